package app

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/pkg/logger"
)

// RoomEmitter fans an event out to every member of a room.
type RoomEmitter interface {
	EmitToRoom(roomID string, resp domain.WSResponse)
}

// hubCommand is the closed set of events the hub processes. Dispatch goes
// through an exhaustive type switch in dispatch().
type hubCommand interface{ isHubCommand() }

type registerCmd struct{ client *Client }
type unregisterCmd struct{ client *Client }
type joinRoomCmd struct {
	client *Client
	roomID string
}
type leaveRoomCmd struct {
	client *Client
	roomID string
}
type sendMessageCmd struct {
	senderID   string
	receiverID string
	productID  string
	content    string
}
type typingCmd struct {
	senderID   string
	receiverID string
	isTyping   bool
}

func (registerCmd) isHubCommand()    {}
func (unregisterCmd) isHubCommand()  {}
func (joinRoomCmd) isHubCommand()    {}
func (leaveRoomCmd) isHubCommand()   {}
func (sendMessageCmd) isHubCommand() {}
func (typingCmd) isHubCommand()      {}

// Hub owns all live connections, room membership and the presence
// registry. Every mutation runs on the single Run goroutine, so events
// from one connection are processed in receipt order and no handler races
// another over shared state.
type Hub struct {
	commands chan hubCommand
	done     chan struct{}

	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	registry    *domain.PresenceRegistry
	broadcaster domain.PresenceBroadcaster
	messageUC   *SendMessageUseCase
	events      repository.ChatEventPublisher
}

// NewHub create a hub around the given presence registry. The default
// presence broadcaster pushes the full snapshot to every connection.
func NewHub(registry *domain.PresenceRegistry) *Hub {
	h := &Hub{
		commands: make(chan hubCommand, 64),
		done:     make(chan struct{}),
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		registry: registry,
	}
	h.broadcaster = &globalPresenceBroadcaster{hub: h}
	return h
}

// SetMessageUseCase attaches the fan-out usecase; called once at wiring
// time, before Run.
func (h *Hub) SetMessageUseCase(uc *SendMessageUseCase) {
	h.messageUC = uc
}

// SetPresenceBroadcaster swaps the presence fan-out strategy; called
// before Run.
func (h *Hub) SetPresenceBroadcaster(b domain.PresenceBroadcaster) {
	h.broadcaster = b
}

// SetEventPublisher attaches the analytics event stream; called before
// Run. A nil publisher disables publishing.
func (h *Hub) SetEventPublisher(p repository.ChatEventPublisher) {
	h.events = p
}

// Run processes commands until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case cmd := <-h.commands:
			h.dispatch(cmd)
		case <-h.done:
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]struct{})
			h.rooms = make(map[string]map[*Client]struct{})
			return
		}
	}
}

// Stop shuts the hub down and closes every client's send queue.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) dispatch(cmd hubCommand) {
	switch c := cmd.(type) {
	case registerCmd:
		h.handleRegister(c.client)
	case unregisterCmd:
		h.handleUnregister(c.client)
	case joinRoomCmd:
		h.addToRoom(c.client, c.roomID)
	case leaveRoomCmd:
		h.removeFromRoom(c.client, c.roomID)
	case sendMessageCmd:
		h.messageUC.Execute(c.senderID, c.receiverID, c.productID, c.content)
	case typingCmd:
		h.messageUC.RelayTyping(c.senderID, c.receiverID, c.isTyping)
	}
}

// Register enrolls a freshly upgraded connection.
func (h *Hub) Register(client *Client) {
	h.post(registerCmd{client: client})
}

// Unregister removes a connection; safe to call for a client already
// dropped by the hub.
func (h *Hub) Unregister(client *Client) {
	h.post(unregisterCmd{client: client})
}

// JoinRoom adds the client to a room. Idempotent; no membership
// validation is performed, matching the reference behavior.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.post(joinRoomCmd{client: client, roomID: roomID})
}

// LeaveRoom removes the client from a room; unknown rooms are a no-op.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.post(leaveRoomCmd{client: client, roomID: roomID})
}

// SendMessage fans a chat message out to the conversation room and
// notifies the receiver's personal room.
func (h *Hub) SendMessage(senderID, receiverID, productID, content string) {
	h.post(sendMessageCmd{senderID: senderID, receiverID: receiverID, productID: productID, content: content})
}

// Typing relays a typing indicator to the receiver's personal room.
func (h *Hub) Typing(senderID, receiverID string, isTyping bool) {
	h.post(typingCmd{senderID: senderID, receiverID: receiverID, isTyping: isTyping})
}

// TouchPresence refreshes the user's last-seen timestamp. The registry
// is mutex-guarded, so this is safe from connection goroutines.
func (h *Hub) TouchPresence(userID string) {
	h.registry.Touch(userID)
}

func (h *Hub) post(cmd hubCommand) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.clients[client] = struct{}{}

	// every user implicitly owns the room named after their id
	h.addToRoom(client, client.UserID)

	h.registry.RecordConnect(client.UserID, client.ConnectionID)
	h.broadcaster.PresenceChanged(h.registry.Snapshot())
	h.publishEvent(domain.ChatEventConnect, client.UserID, "")

	logger.Log.Info("client connected",
		zap.String("userID", client.UserID),
		zap.String("connectionID", client.ConnectionID))
}

func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	h.dropClient(client)

	// a stale connection id must not remove a newer entry for the same user
	if h.registry.RecordDisconnect(client.ConnectionID) {
		h.broadcaster.PresenceChanged(h.registry.Snapshot())
		h.publishEvent(domain.ChatEventDisconnect, client.UserID, "")
	}

	logger.Log.Info("client disconnected",
		zap.String("userID", client.UserID),
		zap.String("connectionID", client.ConnectionID))
}

func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client)
	for roomID := range h.rooms {
		h.removeFromRoom(client, roomID)
	}
	close(client.send)
}

func (h *Hub) addToRoom(client *Client, roomID string) {
	if roomID == "" {
		return
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	members[client] = struct{}{}
}

func (h *Hub) removeFromRoom(client *Client, roomID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// EmitToRoom sends a response frame to every member of roomID. A member
// whose send queue is full is treated as dead and dropped; delivery is
// at-most-once and never blocks on a slow connection.
func (h *Hub) EmitToRoom(roomID string, resp domain.WSResponse) {
	members, ok := h.rooms[roomID]
	if !ok {
		// no listeners; fire-and-forget delivery reports nothing back
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Errorf("marshal response error:", err)
		return
	}

	for client := range members {
		if !client.enqueue(data) {
			logger.Log.Warn("send queue full, dropping client",
				zap.String("userID", client.UserID))
			h.dropClient(client)
			if h.registry.RecordDisconnect(client.ConnectionID) {
				h.broadcaster.PresenceChanged(h.registry.Snapshot())
			}
		}
	}
}

// broadcastAll sends a response frame to every connected client.
func (h *Hub) broadcastAll(resp domain.WSResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Errorf("marshal response error:", err)
		return
	}

	for client := range h.clients {
		if !client.enqueue(data) {
			h.dropClient(client)
			h.registry.RecordDisconnect(client.ConnectionID)
		}
	}
}

func (h *Hub) publishEvent(eventType domain.ChatEventType, userID, roomID string) {
	if h.events == nil {
		return
	}
	event := domain.ChatEvent{
		Type:      eventType,
		UserID:    userID,
		RoomID:    roomID,
		Timestamp: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.events.Publish(ctx, event); err != nil {
			logger.Log.Debug("event publish failed", zap.Error(err))
		}
	}()
}

// globalPresenceBroadcaster pushes the full snapshot to every connection
// on each change. Cost is O(online users) per connect/disconnect, fine
// below a few thousand concurrent connections.
type globalPresenceBroadcaster struct {
	hub *Hub
}

func (b *globalPresenceBroadcaster) PresenceChanged(entries []domain.PresenceEntry) {
	b.hub.broadcastAll(domain.WSResponse{
		Action:  domain.ActionOnlineUsers,
		Payload: entries,
	})
}
