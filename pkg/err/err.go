package errprocess

import (
	"errors"

	"marketplace_chat_service/pkg/logger"
)

// Set logs errMsg and returns it as an error value.
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
