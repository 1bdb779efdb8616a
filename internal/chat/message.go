package chat

import (
	"encoding/json"
	"fmt"
)

// Realtime event names. join_room and send_message arrive from clients;
// receive_message is emitted to every member of the target room.
const (
	EventJoinRoom       = "join_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

// Event is the wire envelope for everything on the websocket.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRoom is the payload of a join_room event.
type JoinRoom struct {
	ServerID  int `json:"serverId"`
	ChannelID int `json:"channelId"`
}

// RoomKey identifies a broadcast room. Every (server, channel) pair maps
// to exactly one room.
type RoomKey struct {
	ServerID  int
	ChannelID int
}

func (k RoomKey) String() string {
	return fmt.Sprintf("%d_%d", k.ServerID, k.ChannelID)
}

func encodeEvent(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Event{Event: name, Data: data})
}
