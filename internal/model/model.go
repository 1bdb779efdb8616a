// Package model defines the chat entities and the dataset document they
// live in. JSON field names are part of both the wire format and the
// durable file format and must not change.
package model

// User is created on first login with a given username and never mutated
// or deleted afterwards. At most one User exists per username.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Channel is nested inside a Server. Only the default "general" channel is
// ever created; there is no channel-creation operation.
type Channel struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Server is a named group of channels.
type Server struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Channels []Channel `json:"channels"`
}

// Message is immutable once created and never deleted. The id is
// client-generated (time-based, milliseconds); the broker fills one in if
// the client omits it.
type Message struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	ServerID  int    `json:"serverId"`
	ChannelID int    `json:"channelId"`
}

// Dataset is the full durable state, read and written as one unit.
type Dataset struct {
	Users    []User    `json:"users"`
	Servers  []Server  `json:"servers"`
	Messages []Message `json:"messages"`
}

// EmptyDataset returns a dataset with non-nil slices so it serializes as
// empty arrays rather than nulls.
func EmptyDataset() Dataset {
	return Dataset{
		Users:    []User{},
		Servers:  []Server{},
		Messages: []Message{},
	}
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() Dataset {
	out := Dataset{
		Users:    make([]User, len(d.Users)),
		Servers:  make([]Server, len(d.Servers)),
		Messages: make([]Message, len(d.Messages)),
	}
	copy(out.Users, d.Users)
	copy(out.Messages, d.Messages)
	for i, s := range d.Servers {
		cp := s
		cp.Channels = make([]Channel, len(s.Channels))
		copy(cp.Channels, s.Channels)
		out.Servers[i] = cp
	}
	return out
}

// NextUserID allocates the next user id. Users are never deleted, so
// max(id)+1 is monotonic; callers must hold the store's write lock.
func (d *Dataset) NextUserID() int {
	max := 0
	for _, u := range d.Users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

// NextServerID allocates the next server id under the same rules as
// NextUserID.
func (d *Dataset) NextServerID() int {
	max := 0
	for _, s := range d.Servers {
		if s.ID > max {
			max = s.ID
		}
	}
	return max + 1
}

// UserByName returns the user with the exact username, or nil.
func (d *Dataset) UserByName(username string) *User {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i]
		}
	}
	return nil
}

// MessagesIn returns all messages for the given server and channel in
// storage order, which equals send order since messages are only appended.
func (d *Dataset) MessagesIn(serverID, channelID int) []Message {
	out := make([]Message, 0)
	for _, m := range d.Messages {
		if m.ServerID == serverID && m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}
