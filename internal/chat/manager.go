package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DS9cl/Web/internal/model"
	"github.com/DS9cl/Web/internal/store"
)

// JoinRequest asks the manager to move a connection into a room.
type JoinRequest struct {
	Client *Client
	Room   RoomKey
}

// Manager is the realtime broker: it tracks connected clients, keeps the
// room table, persists each sent message, and fans it out to the room's
// members. Room membership is ephemeral and process-local; the store stays
// the sole source of truth for history.
type Manager struct {
	mu sync.RWMutex

	store store.Store

	clients map[string]*Client           // conn id -> client
	rooms   map[RoomKey]map[*Client]bool // room -> member set
	current map[*Client]RoomKey          // client -> joined room

	RegisterChan   chan *Client
	UnregisterChan chan *Client
	JoinChan       chan JoinRequest
	SendChan       chan *model.Message
}

// NewManager creates a manager backed by st.
func NewManager(st store.Store) *Manager {
	return &Manager{
		store:          st,
		clients:        map[string]*Client{},
		rooms:          map[RoomKey]map[*Client]bool{},
		current:        map[*Client]RoomKey{},
		RegisterChan:   make(chan *Client),
		UnregisterChan: make(chan *Client),
		JoinChan:       make(chan JoinRequest),
		SendChan:       make(chan *model.Message),
	}
}

// Start runs the broker loop until ctx is cancelled. Call it in its own
// goroutine.
func (m *Manager) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case client := <-m.RegisterChan:
			m.register(client)
		case client := <-m.UnregisterChan:
			m.unregister(client)
		case req := <-m.JoinChan:
			m.join(req.Client, req.Room)
		case msg := <-m.SendChan:
			m.deliver(msg)
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// RoomSize returns the number of connections currently in the room.
func (m *Manager) RoomSize(room RoomKey) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[room])
}

func (m *Manager) register(client *Client) {
	m.mu.Lock()
	m.clients[client.ID] = client
	total := len(m.clients)
	m.mu.Unlock()
	slog.Info("user connected", "conn", client.ID, "clients", total)
}

// unregister is idempotent: the read pump and the connect handler may both
// report the same teardown.
func (m *Manager) unregister(client *Client) {
	m.mu.Lock()
	if _, ok := m.clients[client.ID]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, client.ID)
	m.removeFromRoom(client)
	total := len(m.clients)
	m.mu.Unlock()

	close(client.Send)
	slog.Info("user disconnected", "conn", client.ID, "clients", total)
}

// join moves the client into room. A connection occupies one room at a
// time: joining removes it from its previous room first, so a client that
// switches channels does not keep receiving the old room's traffic.
func (m *Manager) join(client *Client, room RoomKey) {
	m.mu.Lock()
	if _, ok := m.clients[client.ID]; !ok {
		m.mu.Unlock()
		return
	}
	m.removeFromRoom(client)
	if m.rooms[room] == nil {
		m.rooms[room] = map[*Client]bool{}
	}
	m.rooms[room][client] = true
	m.current[client] = room
	m.mu.Unlock()
	slog.Info("joined room", "conn", client.ID, "room", room.String())
}

// removeFromRoom detaches the client from its room, dropping the room
// entry once empty. Caller holds the write lock.
func (m *Manager) removeFromRoom(client *Client) {
	room, ok := m.current[client]
	if !ok {
		return
	}
	delete(m.current, client)
	if members := m.rooms[room]; members != nil {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, room)
		}
	}
}

// deliver persists the message and fans it out to every member of the
// target room, sender included. Persistence and broadcast are not
// transactional: a failed write is logged and the broadcast happens
// anyway.
func (m *Manager) deliver(msg *model.Message) {
	if msg.ID == 0 {
		msg.ID = time.Now().UnixMilli()
	}

	err := m.store.Update(func(d *model.Dataset) error {
		d.Messages = append(d.Messages, *msg)
		return nil
	})
	if err != nil {
		slog.Error("persisting message failed", "serverId", msg.ServerID, "channelId", msg.ChannelID, "err", err)
	}

	data, err := encodeEvent(EventReceiveMessage, msg)
	if err != nil {
		slog.Error("encoding message failed", "err", err)
		return
	}

	room := RoomKey{ServerID: msg.ServerID, ChannelID: msg.ChannelID}
	m.mu.RLock()
	snapshot := make([]*Client, 0, len(m.rooms[room]))
	for client := range m.rooms[room] {
		snapshot = append(snapshot, client)
	}
	m.mu.RUnlock()

	for _, client := range snapshot {
		select {
		case client.Send <- data:
		default:
			slog.Warn("dropping frame for slow client", "conn", client.ID, "room", room.String())
		}
	}
}

// shutdown closes every client's send channel so write pumps terminate.
func (m *Manager) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, client := range m.clients {
		close(client.Send)
	}
	m.clients = map[string]*Client{}
	m.rooms = map[RoomKey]map[*Client]bool{}
	m.current = map[*Client]RoomKey{}
}
