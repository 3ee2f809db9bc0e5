package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/pkg/logger"
)

// SendMessageUseCase fans chat messages and typing indicators out to
// rooms. Delivery is best-effort with no receipt or retry: an offline
// receiver simply hears nothing.
type SendMessageUseCase struct {
	emitter RoomEmitter
	history *HistoryWriter
	events  repository.ChatEventPublisher
}

// NewSendMessageUseCase init create message use case. History writer and
// event publisher are optional; nil disables them.
func NewSendMessageUseCase(emitter RoomEmitter, history *HistoryWriter, events repository.ChatEventPublisher) *SendMessageUseCase {
	return &SendMessageUseCase{
		emitter: emitter,
		history: history,
		events:  events,
	}
}

// Execute delivers one message. The full message goes to the canonical
// conversation room; a truncated preview goes to the receiver's personal
// room so a notification badge works even before they open the
// conversation. The sender only sees an echo if they joined the room.
func (uc *SendMessageUseCase) Execute(senderID, receiverID, productID, content string) {
	roomID := domain.ConversationRoomID(senderID, receiverID)

	msg := domain.ChatMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ProductID:  productID,
		Content:    content,
		Timestamp:  time.Now(),
		Read:       false,
	}

	uc.emitter.EmitToRoom(roomID, domain.WSResponse{
		Action:  domain.ActionNewMessage,
		Payload: msg,
	})

	uc.emitter.EmitToRoom(receiverID, domain.WSResponse{
		Action: domain.ActionMessageNotification,
		Payload: domain.MessageNotification{
			SenderID:  senderID,
			Content:   domain.PreviewContent(content),
			ProductID: productID,
		},
	})

	// persistence and analytics stay off the broadcast path
	if uc.history != nil {
		uc.history.Enqueue(domain.MessageRecord{
			ID:          uuid.New().String(),
			RoomID:      roomID,
			ChatMessage: msg,
		})
	}
	if uc.events != nil {
		uc.publishSent(senderID, roomID)
	}
}

// RelayTyping forwards an ephemeral typing indicator to the receiver's
// personal room. No state is retained and no rate limiting is applied.
func (uc *SendMessageUseCase) RelayTyping(senderID, receiverID string, isTyping bool) {
	uc.emitter.EmitToRoom(receiverID, domain.WSResponse{
		Action: domain.ActionUserTyping,
		Payload: domain.TypingSignal{
			UserID:   senderID,
			IsTyping: isTyping,
		},
	})
}

func (uc *SendMessageUseCase) publishSent(senderID, roomID string) {
	event := domain.ChatEvent{
		Type:      domain.ChatEventMessageSent,
		UserID:    senderID,
		RoomID:    roomID,
		Timestamp: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.events.Publish(ctx, event); err != nil {
			logger.Log.Debug("event publish failed", zap.Error(err))
		}
	}()
}
