package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/logger"
	"marketplace_chat_service/pkg/middlewares"
)

// ChatWebsocketHandler is the websocket entry point. It resolves the
// connection identity set by the middleware, registers the client with
// the hub, and feeds inbound frames into the hub's command loop.
type ChatWebsocketHandler struct {
	hub *Hub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(hub *Hub) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{hub: hub}
}

// HandleConnection runs for the lifetime of one connection.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, ok := conn.Locals(middlewares.LocalUserID).(string)
	if !ok || userID == "" {
		// the resolver never rejects; a missing local still degrades to guest
		userID = middlewares.GuestUserID
	}
	logger.Log.Info("websocket handle userID", zap.String("userID", userID))

	client := NewClient(h.hub, conn, userID)

	defer func() {
		logger.Log.Info("websocket close", zap.String("userID", userID))
		h.hub.Unregister(client)
		conn.Close()
	}()

	// fiber answers close/ping/pong frames itself; the handlers below only
	// surface them for logging
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		h.hub.TouchPresence(userID)
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	go client.WritePump()
	h.hub.Register(client)

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(client, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(client *Client, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(client, msg)
	default:
		h.sendError(client, "unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(client *Client, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		h.sendError(client, "malformed request")
		return
	}

	switch req.Action {
	case string(domain.ActionJoinRoom):
		h.hub.JoinRoom(client, req.RoomID)

	case string(domain.ActionLeaveRoom):
		h.hub.LeaveRoom(client, req.RoomID)

	case string(domain.ActionSendMessage):
		h.hub.SendMessage(client.UserID, req.ReceiverID, req.ProductID, req.Content)

	case string(domain.ActionTyping):
		h.hub.Typing(client.UserID, req.ReceiverID, req.IsTyping)

	default:
		h.sendError(client, "unknown action")
	}
}

// sendError queues an error envelope for the client; a full queue means
// the connection is on its way out and the frame is simply dropped.
func (h *ChatWebsocketHandler) sendError(client *Client, errorMsg string) {
	resp := domain.WSResponse{
		Action: domain.ActionError,
		Error:  errorMsg,
	}
	b, _ := json.Marshal(resp)
	client.enqueue(b)
}
