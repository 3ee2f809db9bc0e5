package app

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

func TestSendMessageUseCase_Execute(t *testing.T) {
	mockEmitter := new(MockRoomEmitter)

	var roomMsg domain.ChatMessage
	var notification domain.MessageNotification

	mockEmitter.On("EmitToRoom", "u1-u2", mock.Anything).Run(func(args mock.Arguments) {
		resp := args.Get(1).(domain.WSResponse)
		assert.Equal(t, domain.ActionNewMessage, resp.Action)
		roomMsg = resp.Payload.(domain.ChatMessage)
	}).Once()
	mockEmitter.On("EmitToRoom", "u2", mock.Anything).Run(func(args mock.Arguments) {
		resp := args.Get(1).(domain.WSResponse)
		assert.Equal(t, domain.ActionMessageNotification, resp.Action)
		notification = resp.Payload.(domain.MessageNotification)
	}).Once()

	uc := NewSendMessageUseCase(mockEmitter, nil, nil)
	uc.Execute("u1", "u2", "p42", "Hello, is this still available?")

	mockEmitter.AssertExpectations(t)

	assert.Equal(t, "u1", roomMsg.SenderID)
	assert.Equal(t, "u2", roomMsg.ReceiverID)
	assert.Equal(t, "p42", roomMsg.ProductID)
	assert.Equal(t, "Hello, is this still available?", roomMsg.Content)
	assert.False(t, roomMsg.Read)
	assert.WithinDuration(t, time.Now(), roomMsg.Timestamp, time.Second)

	// content is short enough that the preview is untouched
	assert.Equal(t, "u1", notification.SenderID)
	assert.Equal(t, "Hello, is this still available?", notification.Content)
	assert.Equal(t, "p42", notification.ProductID)
}

func TestSendMessageUseCase_ExecuteTruncatesNotification(t *testing.T) {
	content := strings.Repeat("x", 55)

	mockEmitter := new(MockRoomEmitter)

	var notification domain.MessageNotification
	mockEmitter.On("EmitToRoom", "a-b", mock.Anything).Once()
	mockEmitter.On("EmitToRoom", "b", mock.Anything).Run(func(args mock.Arguments) {
		notification = args.Get(1).(domain.WSResponse).Payload.(domain.MessageNotification)
	}).Once()

	uc := NewSendMessageUseCase(mockEmitter, nil, nil)
	uc.Execute("a", "b", "", content)

	mockEmitter.AssertExpectations(t)
	assert.Equal(t, content[:50]+"...", notification.Content)
}

func TestSendMessageUseCase_ExecuteRoomIDCanonical(t *testing.T) {
	// receiver id sorting places "a" before "b" regardless of sender
	mockEmitter := new(MockRoomEmitter)
	mockEmitter.On("EmitToRoom", "a-b", mock.Anything).Once()
	mockEmitter.On("EmitToRoom", "a", mock.Anything).Once()

	uc := NewSendMessageUseCase(mockEmitter, nil, nil)
	uc.Execute("b", "a", "", "hi")

	mockEmitter.AssertExpectations(t)
}

func TestSendMessageUseCase_ExecutePersistsHistory(t *testing.T) {
	mockRepo := new(MockMessageHistoryRepository)

	var record *domain.MessageRecord
	mockRepo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		record = args.Get(1).(*domain.MessageRecord)
	}).Return(nil).Once()

	writer := NewHistoryWriter(mockRepo, nil, 8)
	writer.Start()

	mockEmitter := new(MockRoomEmitter)
	mockEmitter.On("EmitToRoom", mock.Anything, mock.Anything).Twice()

	uc := NewSendMessageUseCase(mockEmitter, writer, nil)
	uc.Execute("u1", "u2", "p1", "persist me")

	// Close drains the queue before returning
	writer.Close()

	mockRepo.AssertExpectations(t)
	require.NotNil(t, record)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "u1-u2", record.RoomID)
	assert.Equal(t, "persist me", record.Content)
}

func TestSendMessageUseCase_ExecutePublishesEvent(t *testing.T) {
	publisher := newFakeEventPublisher()

	mockEmitter := new(MockRoomEmitter)
	mockEmitter.On("EmitToRoom", mock.Anything, mock.Anything).Twice()

	uc := NewSendMessageUseCase(mockEmitter, nil, publisher)
	uc.Execute("u1", "u2", "", "hello")

	select {
	case event := <-publisher.events:
		assert.Equal(t, domain.ChatEventMessageSent, event.Type)
		assert.Equal(t, "u1", event.UserID)
		assert.Equal(t, "u1-u2", event.RoomID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a message_sent event")
	}
}

func TestSendMessageUseCase_RelayTyping(t *testing.T) {
	mockEmitter := new(MockRoomEmitter)
	mockEmitter.On("EmitToRoom", "u2", mock.Anything).Run(func(args mock.Arguments) {
		resp := args.Get(1).(domain.WSResponse)
		assert.Equal(t, domain.ActionUserTyping, resp.Action)

		signal := resp.Payload.(domain.TypingSignal)
		assert.Equal(t, "u1", signal.UserID)
		assert.True(t, signal.IsTyping)
	}).Once()

	uc := NewSendMessageUseCase(mockEmitter, nil, nil)
	uc.RelayTyping("u1", "u2", true)

	mockEmitter.AssertExpectations(t)
}
