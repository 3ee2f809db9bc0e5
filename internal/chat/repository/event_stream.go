package repository

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"marketplace_chat_service/internal/chat/domain"
)

// ChatEventPublisher publishes analytics events from the chat layer.
// Publishing is best-effort; a failed publish never affects delivery.
type ChatEventPublisher interface {
	Publish(ctx context.Context, event domain.ChatEvent) error
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
}

// NewKafkaEventPublisher create publisher writing to the configured topic.
func NewKafkaEventPublisher(writer *kafka.Writer) ChatEventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event domain.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	})
}
