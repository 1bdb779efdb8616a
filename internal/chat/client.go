package chat

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"

	"github.com/DS9cl/Web/internal/model"
)

// Client is one websocket connection. Outbound frames go through the
// buffered Send channel; slow consumers drop frames rather than block the
// manager.
type Client struct {
	ID   string
	Conn ConnLike
	Send chan []byte
}

// ConnLike is the subset of *websocket.Conn the client needs, kept as an
// interface so tests can script connections.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

// ReadPump reads events from the connection and dispatches them to the
// manager until the connection errors, then unregisters the client.
// Malformed frames are skipped.
func (c *Client) ReadPump(m *Manager) {
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			m.UnregisterChan <- c
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Debug("dropping malformed frame", "conn", c.ID, "err", err)
			continue
		}
		switch ev.Event {
		case EventJoinRoom:
			var jr JoinRoom
			if err := json.Unmarshal(ev.Data, &jr); err != nil {
				continue
			}
			m.JoinChan <- JoinRequest{Client: c, Room: RoomKey{ServerID: jr.ServerID, ChannelID: jr.ChannelID}}
		case EventSendMessage:
			var msg model.Message
			if err := json.Unmarshal(ev.Data, &msg); err != nil {
				continue
			}
			m.SendChan <- &msg
		default:
			slog.Debug("unknown event", "conn", c.ID, "event", ev.Event)
		}
	}
}

// WritePump drains the Send channel onto the connection. It returns when
// the manager closes Send during unregistration.
func (c *Client) WritePump() {
	for data := range c.Send {
		_ = c.Conn.WriteMessage(websocket.TextMessage, data)
	}
}
