package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"
)

// RecentMessageCache keeps a capped per-room list of the latest messages,
// newest first, so the history endpoint can answer without hitting the
// document store.
type RecentMessageCache interface {
	Push(ctx context.Context, roomID string, record domain.MessageRecord) error
	Recent(ctx context.Context, roomID string, limit int64) ([]domain.MessageRecord, error)
}

type redisRecentCache struct {
	client   *redis.Client
	capacity int64
}

// NewRedisRecentCache create cache keeping up to capacity entries per room.
func NewRedisRecentCache(client *redis.Client, capacity int64) RecentMessageCache {
	return &redisRecentCache{client: client, capacity: capacity}
}

func cacheKey(roomID string) string {
	return "chat:recent:" + roomID
}

func (c *redisRecentCache) Push(ctx context.Context, roomID string, record domain.MessageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, cacheKey(roomID), data)
	pipe.LTrim(ctx, cacheKey(roomID), 0, c.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errprocess.Set(fmt.Sprintf("cache push for room(%s) err: %v", roomID, err))
	}
	return nil
}

func (c *redisRecentCache) Recent(ctx context.Context, roomID string, limit int64) ([]domain.MessageRecord, error) {
	values, err := c.client.LRange(ctx, cacheKey(roomID), 0, limit-1).Result()
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("cache read for room(%s) err: %v", roomID, err))
	}

	records := make([]domain.MessageRecord, 0, len(values))
	for _, v := range values {
		var record domain.MessageRecord
		if err := json.Unmarshal([]byte(v), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
