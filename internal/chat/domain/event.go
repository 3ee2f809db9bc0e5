package domain

import "time"

// Action websocket event name
type Action string

const (
	// ActionJoinRoom client requests membership in a room
	ActionJoinRoom Action = "joinRoom"
	// ActionLeaveRoom client leaves a room
	ActionLeaveRoom Action = "leaveRoom"
	// ActionSendMessage client sends a chat message
	ActionSendMessage Action = "sendMessage"
	// ActionTyping client toggles its typing state
	ActionTyping Action = "typing"

	// ActionNewMessage full message delivered to a conversation room
	ActionNewMessage Action = "newMessage"
	// ActionMessageNotification truncated preview delivered to the receiver's personal room
	ActionMessageNotification Action = "messageNotification"
	// ActionUserTyping typing indicator delivered to the receiver's personal room
	ActionUserTyping Action = "userTyping"
	// ActionOnlineUsers presence snapshot delivered to every connection
	ActionOnlineUsers Action = "onlineUsers"
	// ActionError error envelope for malformed or unknown requests
	ActionError Action = "error"
)

// WSRequest websocket request envelope
type WSRequest struct {
	Action     string `json:"action"`
	RoomID     string `json:"roomId"`
	ReceiverID string `json:"receiverId"`
	ProductID  string `json:"productId"`
	Content    string `json:"content"`
	IsTyping   bool   `json:"isTyping"`
}

// WSResponse websocket response envelope
type WSResponse struct {
	Action  Action      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ChatEventType classifies analytics events on the chat event stream.
type ChatEventType string

const (
	// ChatEventConnect a user came online
	ChatEventConnect ChatEventType = "connect"
	// ChatEventDisconnect a user went offline
	ChatEventDisconnect ChatEventType = "disconnect"
	// ChatEventMessageSent a message was fanned out
	ChatEventMessageSent ChatEventType = "message_sent"
)

// ChatEvent is published fire-and-forget to the analytics stream; a
// consumer is an external collaborator.
type ChatEvent struct {
	Type      ChatEventType `json:"type"`
	UserID    string        `json:"user_id"`
	RoomID    string        `json:"room_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
