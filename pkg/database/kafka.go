package database

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"marketplace_chat_service/pkg/logger"
)

// NewKafkaWriterWithRetry builds a Kafka writer and confirms the connection
// by writing a probe message, retrying per the connection settings.
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var writer *kafka.Writer
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  k.Brokers,
			Topic:    k.Topic,
			Balancer: &kafka.LeastBytes{},
		})

		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte("ping"),
			Value: []byte("ping"),
		})
		if err == nil {
			logger.Log.Info(fmt.Sprintf("Kafka writer ready after %d attempt(s)", attempt))
			return writer, nil
		}

		logger.Log.Warn(fmt.Sprintf("Kafka writer attempt %d/%d failed: %v", attempt, k.RetryCount, err))
		writer.Close()
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("unable to build kafka writer after %d attempts: %v", k.RetryCount, err)
}
