package domain

import "time"

// PreviewLimit is the number of leading characters kept in a message
// notification preview.
const PreviewLimit = 50

// ChatMessage is the full message payload fanned out to a conversation
// room. It is transient: the broadcast path never retains it after
// delivery.
type ChatMessage struct {
	SenderID   string    `json:"senderId" bson:"sender_id"`
	ReceiverID string    `json:"receiverId" bson:"receiver_id"`
	ProductID  string    `json:"productId" bson:"product_id,omitempty"`
	Content    string    `json:"content" bson:"content"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	Read       bool      `json:"read" bson:"read"`
}

// MessageNotification is the truncated preview sent to the receiver's
// personal room, reaching them even when they have not joined the
// conversation room.
type MessageNotification struct {
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	ProductID string `json:"productId"`
}

// TypingSignal is a fire-and-forget typing indicator.
type TypingSignal struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// MessageRecord is the persisted form of a delivered message. Persistence
// happens off the broadcast path; dropping a record never affects delivery.
type MessageRecord struct {
	ID          string `json:"id" bson:"id"`
	RoomID      string `json:"roomId" bson:"room_id"`
	ChatMessage `bson:",inline"`
}

// PreviewContent truncates content for a notification: the first
// PreviewLimit characters, with "..." appended only when the content is
// actually longer. Content of exactly PreviewLimit characters is returned
// unmodified.
func PreviewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + "..."
}
