package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/pkg/logger"
)

const persistTimeout = 10 * time.Second

// HistoryWriter persists delivered messages on its own goroutine so a
// slow store never delays delivery to connected recipients. When the
// queue is full the record is dropped with a warning; chat delivery has
// no durability guarantee to begin with.
type HistoryWriter struct {
	queue chan domain.MessageRecord
	repo  repository.MessageHistoryRepository
	cache repository.RecentMessageCache
	wg    sync.WaitGroup
}

// NewHistoryWriter create a writer; repo and cache are each optional.
func NewHistoryWriter(repo repository.MessageHistoryRepository, cache repository.RecentMessageCache, queueSize int) *HistoryWriter {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &HistoryWriter{
		queue: make(chan domain.MessageRecord, queueSize),
		repo:  repo,
		cache: cache,
	}
}

// Start launches the worker goroutine.
func (w *HistoryWriter) Start() {
	w.wg.Add(1)
	go w.run()
}

// Enqueue hands a record to the worker without blocking.
func (w *HistoryWriter) Enqueue(record domain.MessageRecord) {
	select {
	case w.queue <- record:
	default:
		logger.Log.Warn("history queue full, dropping record",
			zap.String("roomID", record.RoomID))
	}
}

// Close drains the queue and stops the worker.
func (w *HistoryWriter) Close() {
	close(w.queue)
	w.wg.Wait()
}

func (w *HistoryWriter) run() {
	defer w.wg.Done()

	for record := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)

		if w.repo != nil {
			if err := w.repo.Insert(ctx, &record); err != nil {
				logger.Log.Warn("history insert failed",
					zap.String("roomID", record.RoomID), zap.Error(err))
			}
		}
		if w.cache != nil {
			if err := w.cache.Push(ctx, record.RoomID, record); err != nil {
				logger.Log.Warn("recent cache push failed",
					zap.String("roomID", record.RoomID), zap.Error(err))
			}
		}

		cancel()
	}
}
