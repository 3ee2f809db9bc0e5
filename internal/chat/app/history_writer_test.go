package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"marketplace_chat_service/internal/chat/domain"
)

func record(roomID, content string) domain.MessageRecord {
	return domain.MessageRecord{
		ID:     "m1",
		RoomID: roomID,
		ChatMessage: domain.ChatMessage{
			SenderID:   "u1",
			ReceiverID: "u2",
			Content:    content,
		},
	}
}

func TestHistoryWriter_PersistsAndCaches(t *testing.T) {
	mockRepo := new(MockMessageHistoryRepository)
	mockCache := new(MockRecentMessageCache)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	mockCache.On("Push", mock.Anything, "u1-u2", mock.Anything).Return(nil).Once()

	w := NewHistoryWriter(mockRepo, mockCache, 8)
	w.Start()
	w.Enqueue(record("u1-u2", "hello"))
	w.Close()

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestHistoryWriter_EnqueueNeverBlocksWhenFull(t *testing.T) {
	mockRepo := new(MockMessageHistoryRepository)

	// worker not started; capacity 1 means the second record must be
	// dropped instead of blocking the caller
	w := NewHistoryWriter(mockRepo, nil, 1)
	w.Enqueue(record("r", "first"))
	w.Enqueue(record("r", "second"))

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	w.Start()
	w.Close()

	mockRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestHistoryWriter_StoreErrorDoesNotStopWorker(t *testing.T) {
	mockRepo := new(MockMessageHistoryRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Twice()

	w := NewHistoryWriter(mockRepo, nil, 8)
	w.Start()
	w.Enqueue(record("r", "one"))
	w.Enqueue(record("r", "two"))

	assert.NotPanics(t, w.Close)
	mockRepo.AssertExpectations(t)
}
