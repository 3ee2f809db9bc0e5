package router

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

type wsFrame struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
}

// startServer boots the full route stack on a random local port with the
// unverified identity mode on, so tests can connect as ?user_id=<id>.
func startServer(t *testing.T) string {
	t.Helper()

	registry := domain.NewPresenceRegistry()
	hub := app.NewHub(registry)
	hub.SetMessageUseCase(app.NewSendMessageUseCase(hub, nil, nil))
	go hub.Run()

	r := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(r, true, app.NewChatWebsocketHandler(hub), app.NewChatHTTPHandler(registry, nil, nil, 0))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = r.Listener(ln)
	}()

	t.Cleanup(func() {
		_ = r.Shutdown()
		hub.Stop()
	})

	return ln.Addr().String()
}

func dialWS(t *testing.T, addr, query string) *websocket.Conn {
	t.Helper()

	url := "ws://" + addr + "/ws"
	if query != "" {
		url += "?" + query
	}

	var conn *websocket.Conn
	var err error
	for i := 0; i < 20; i++ {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, err, "dial %s", url)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f wsFrame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func sendWS(t *testing.T, conn *websocket.Conn, req domain.WSRequest) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
}

func TestWebsocket_ConversationFlow(t *testing.T) {
	addr := startServer(t)

	alice := dialWS(t, addr, "user_id=alice")
	f := readWS(t, alice)
	require.Equal(t, string(domain.ActionOnlineUsers), f.Action)

	bob := dialWS(t, addr, "user_id=bob")
	readWS(t, alice) // snapshot grows to two
	readWS(t, bob)

	sendWS(t, alice, domain.WSRequest{Action: string(domain.ActionJoinRoom), RoomID: "alice-bob"})
	sendWS(t, bob, domain.WSRequest{Action: string(domain.ActionJoinRoom), RoomID: "alice-bob"})
	time.Sleep(200 * time.Millisecond)

	sendWS(t, alice, domain.WSRequest{
		Action:     string(domain.ActionSendMessage),
		ReceiverID: "bob",
		ProductID:  "p9",
		Content:    "Hello, is this still available?",
	})

	fa := readWS(t, alice)
	assert.Equal(t, string(domain.ActionNewMessage), fa.Action)

	fb := readWS(t, bob)
	require.Equal(t, string(domain.ActionNewMessage), fb.Action)

	var msg domain.ChatMessage
	require.NoError(t, json.Unmarshal(fb.Payload, &msg))
	assert.Equal(t, "alice", msg.SenderID)
	assert.Equal(t, "bob", msg.ReceiverID)
	assert.Equal(t, "p9", msg.ProductID)
	assert.Equal(t, "Hello, is this still available?", msg.Content)

	fn := readWS(t, bob)
	assert.Equal(t, string(domain.ActionMessageNotification), fn.Action)
}

func TestWebsocket_TypingIndicator(t *testing.T) {
	addr := startServer(t)

	alice := dialWS(t, addr, "user_id=alice")
	readWS(t, alice)

	bob := dialWS(t, addr, "user_id=bob")
	readWS(t, alice)
	readWS(t, bob)

	sendWS(t, alice, domain.WSRequest{
		Action:     string(domain.ActionTyping),
		ReceiverID: "bob",
		IsTyping:   true,
	})

	f := readWS(t, bob)
	require.Equal(t, string(domain.ActionUserTyping), f.Action)

	var signal domain.TypingSignal
	require.NoError(t, json.Unmarshal(f.Payload, &signal))
	assert.Equal(t, "alice", signal.UserID)
	assert.True(t, signal.IsTyping)
}

func TestWebsocket_GuestFallback(t *testing.T) {
	addr := startServer(t)

	conn := dialWS(t, addr, "")
	f := readWS(t, conn)
	require.Equal(t, string(domain.ActionOnlineUsers), f.Action)

	var entries []domain.PresenceEntry
	require.NoError(t, json.Unmarshal(f.Payload, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "guest", entries[0].UserID)
}

func TestWebsocket_UnknownActionReturnsError(t *testing.T) {
	addr := startServer(t)

	conn := dialWS(t, addr, "user_id=alice")
	readWS(t, conn)

	sendWS(t, conn, domain.WSRequest{Action: "selfDestruct"})

	f := readWS(t, conn)
	assert.Equal(t, string(domain.ActionError), f.Action)
	assert.Equal(t, "unknown action", f.Error)
}

func TestWebsocket_PlainGETRequiresUpgrade(t *testing.T) {
	addr := startServer(t)

	var resp *http.Response
	var err error
	for i := 0; i < 20; i++ {
		resp, err = http.Get("http://" + addr + "/ws")
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestWebsocket_DisconnectUpdatesPresence(t *testing.T) {
	addr := startServer(t)

	alice := dialWS(t, addr, "user_id=alice")
	readWS(t, alice)

	bob := dialWS(t, addr, "user_id=bob")
	readWS(t, alice)
	readWS(t, bob)

	require.NoError(t, bob.Close())

	f := readWS(t, alice)
	require.Equal(t, string(domain.ActionOnlineUsers), f.Action)

	var entries []domain.PresenceEntry
	require.NoError(t, json.Unmarshal(f.Payload, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].UserID)
}
