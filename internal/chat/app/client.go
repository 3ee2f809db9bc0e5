package app

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"marketplace_chat_service/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second

	sendQueueSize = 256
)

// Client is one live websocket connection. The hub owns its lifecycle:
// registration, room membership, and closing the send queue.
type Client struct {
	UserID       string
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient create a client for an upgraded connection. The connection id
// plays the role of a socket id: it identifies this connection, not the
// user.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendQueueSize),
	}
}

// enqueue hands a frame to the write pump without blocking. Reports false
// when the queue is full, which the hub treats as a dead connection.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// WritePump writes queued frames and keeps the connection alive with
// pings. It exits when the hub closes the send queue or a write fails;
// either way the connection is closed, which also unblocks the read loop.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Log.Errorf("write message error:", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
