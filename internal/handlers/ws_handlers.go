package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/DS9cl/Web/internal/chat"
)

// UpgradeRequired gates the websocket route: plain HTTP requests get a 426
// instead of reaching the upgrader.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Connect GET /ws
// Registers the connection with the broker and runs its pumps until the
// peer goes away. No authentication happens here: any connection may join
// any room.
func Connect(m *chat.Manager) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := &chat.Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Send: make(chan []byte, 16),
		}
		m.RegisterChan <- client
		defer func() { m.UnregisterChan <- client }()
		go client.WritePump()
		client.ReadPump(m)
	}
}
