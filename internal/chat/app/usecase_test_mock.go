package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketplace_chat_service/internal/chat/domain"
)

// MockRoomEmitter Mock RoomEmitter
type MockRoomEmitter struct {
	mock.Mock
}

// EmitToRoom mock fan-out
func (m *MockRoomEmitter) EmitToRoom(roomID string, resp domain.WSResponse) {
	m.Called(roomID, resp)
}

// MockMessageHistoryRepository Mock MessageHistoryRepository
type MockMessageHistoryRepository struct {
	mock.Mock
}

// Insert mock insert record
func (m *MockMessageHistoryRepository) Insert(ctx context.Context, record *domain.MessageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// FindRecentByRoom mock find recent records
func (m *MockMessageHistoryRepository) FindRecentByRoom(ctx context.Context, roomID string, limit int64) ([]domain.MessageRecord, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MessageRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRecentMessageCache Mock RecentMessageCache
type MockRecentMessageCache struct {
	mock.Mock
}

// Push mock cache push
func (m *MockRecentMessageCache) Push(ctx context.Context, roomID string, record domain.MessageRecord) error {
	args := m.Called(ctx, roomID, record)
	return args.Error(0)
}

// Recent mock cache read
func (m *MockRecentMessageCache) Recent(ctx context.Context, roomID string, limit int64) ([]domain.MessageRecord, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MessageRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeEventPublisher records published events on a channel so tests can
// wait for the fire-and-forget goroutine.
type fakeEventPublisher struct {
	events chan domain.ChatEvent
}

func newFakeEventPublisher() *fakeEventPublisher {
	return &fakeEventPublisher{events: make(chan domain.ChatEvent, 16)}
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event domain.ChatEvent) error {
	f.events <- event
	return nil
}
