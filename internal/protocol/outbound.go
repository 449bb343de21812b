package protocol

import "encoding/json"

type ConnectionResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Username    string   `json:"username,omitempty"`
	OnlineUsers []string `json:"online_users,omitempty"`
}

type UserJoined struct {
	Username    string   `json:"username"`
	OnlineUsers []string `json:"online_users"`
}

type NewMessage struct {
	Username  string          `json:"username"`
	Message   string          `json:"message"`
	Room      string          `json:"room,omitempty"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// RoomInfo is one entry of the rooms snapshot handed to a room creator.
type RoomInfo struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type RoomResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	RoomID   string              `json:"room_id,omitempty"`
	RoomName string              `json:"room_name,omitempty"`
	Rooms    map[string]RoomInfo `json:"rooms,omitempty"`
	Members  []string            `json:"members,omitempty"`
}

type RoomCreated struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Creator  string `json:"creator"`
}

type UserJoinedRoom struct {
	Username string   `json:"username"`
	RoomID   string   `json:"room_id"`
	Members  []string `json:"members"`
}

type UserLeftRoom struct {
	Username string   `json:"username"`
	RoomID   string   `json:"room_id"`
	Members  []string `json:"members"`
}

type UserLeft struct {
	Username    string   `json:"username"`
	OnlineUsers []string `json:"online_users"`
}

// Error answers a frame the server could not understand.
type Error struct {
	Message string `json:"message"`
}

func (ConnectionResponse) EventName() string { return EventConnectionResponse }
func (LoginResponse) EventName() string      { return EventLoginResponse }
func (UserJoined) EventName() string         { return EventUserJoined }
func (NewMessage) EventName() string         { return EventNewMessage }
func (RoomResponse) EventName() string       { return EventRoomResponse }
func (RoomCreated) EventName() string        { return EventRoomCreated }
func (UserJoinedRoom) EventName() string     { return EventUserJoinedRoom }
func (UserLeftRoom) EventName() string       { return EventUserLeftRoom }
func (UserLeft) EventName() string           { return EventUserLeft }
func (Error) EventName() string              { return EventError }
