package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"
)

// MessageHistoryRepository stores delivered chat messages. Writes happen
// off the broadcast path; the messaging layer itself never reads them
// back during delivery.
type MessageHistoryRepository interface {
	Insert(ctx context.Context, record *domain.MessageRecord) error
	FindRecentByRoom(ctx context.Context, roomID string, limit int64) ([]domain.MessageRecord, error)
}

type mongoMessageRepository struct {
	col *mongo.Collection
}

// NewMongoMessageRepository create message history repository backed by
// the "messages" collection.
func NewMongoMessageRepository(db *mongo.Database) MessageHistoryRepository {
	return &mongoMessageRepository{col: db.Collection("messages")}
}

func (r *mongoMessageRepository) Insert(ctx context.Context, record *domain.MessageRecord) error {
	if _, err := r.col.InsertOne(ctx, record); err != nil {
		return errprocess.Set(fmt.Sprintf("insert message record err: %v", err))
	}
	return nil
}

func (r *mongoMessageRepository) FindRecentByRoom(ctx context.Context, roomID string, limit int64) ([]domain.MessageRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("find messages for room(%s) err: %v", roomID, err))
	}
	defer cursor.Close(ctx)

	var records []domain.MessageRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("decode messages for room(%s) err: %v", roomID, err))
	}
	return records, nil
}
