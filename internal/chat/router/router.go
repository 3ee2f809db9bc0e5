package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/pkg/middlewares"
)

// RegisterRoutes wires the REST surface and the websocket entry point.
// Identity resolution runs only on the websocket path, before the
// upgrade, so the resolved user id is available on the connection locals.
func RegisterRoutes(r *fiber.App, allowUnverified bool, chatWebsocket *app.ChatWebsocketHandler, chatHTTP *app.ChatHTTPHandler) {
	r.Get("/health", chatHTTP.Health)

	api := r.Group("/api/chat")
	api.Get("/online", chatHTTP.OnlineUsers)
	api.Get("/history/:roomId", chatHTTP.RoomHistory)

	r.Use("/ws", middlewares.IdentityResolver(allowUnverified), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
