package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/pkg/logger"
)

// ChatHTTPHandler serves the small REST surface next to the websocket:
// liveness, the presence snapshot, and recent room history.
type ChatHTTPHandler struct {
	registry    *domain.PresenceRegistry
	historyRepo repository.MessageHistoryRepository
	cache       repository.RecentMessageCache
	recentLimit int64

	startedAt time.Time
}

// NewChatHTTPHandler create ChatHTTPHandler. History repo and cache are
// optional; without them the history endpoint answers with an empty list.
func NewChatHTTPHandler(registry *domain.PresenceRegistry, historyRepo repository.MessageHistoryRepository, cache repository.RecentMessageCache, recentLimit int64) *ChatHTTPHandler {
	if recentLimit <= 0 {
		recentLimit = 50
	}
	return &ChatHTTPHandler{
		registry:    registry,
		historyRepo: historyRepo,
		cache:       cache,
		recentLimit: recentLimit,
		startedAt:   time.Now(),
	}
}

// Health liveness probe
func (h *ChatHTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Server is healthy",
		"uptime":  time.Since(h.startedAt).Seconds(),
	})
}

// OnlineUsers returns the current presence snapshot, same shape as the
// onlineUsers websocket event.
func (h *ChatHTTPHandler) OnlineUsers(c *fiber.Ctx) error {
	return c.JSON(h.registry.Snapshot())
}

// RoomHistory returns recent messages for a room, cache first with a
// fallback to the document store.
func (h *ChatHTTPHandler) RoomHistory(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	if roomID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing room id",
		})
	}

	if h.cache != nil {
		records, err := h.cache.Recent(c.Context(), roomID, h.recentLimit)
		if err == nil && len(records) > 0 {
			return c.JSON(records)
		}
		if err != nil {
			logger.Log.Warn("recent cache read failed", zap.Error(err))
		}
	}

	if h.historyRepo != nil {
		records, err := h.historyRepo.FindRecentByRoom(c.Context(), roomID, h.recentLimit)
		if err != nil {
			logger.Log.Errorf("history read error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "history unavailable",
			})
		}
		return c.JSON(records)
	}

	return c.JSON([]domain.MessageRecord{})
}
