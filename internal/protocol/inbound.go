package protocol

import "encoding/json"

// The username fields mirror what browser clients send; the server always
// uses the name bound to the connection instead.

type Login struct {
	Username string `json:"username" validate:"max=64"`
}

type SendMessage struct {
	Username  string          `json:"username,omitempty" validate:"max=64"`
	Message   string          `json:"message" validate:"required,max=4096"`
	Room      string          `json:"room,omitempty" validate:"max=64"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

type CreateRoom struct {
	RoomName string `json:"room_name" validate:"max=64"`
	Username string `json:"username,omitempty" validate:"max=64"`
}

type JoinRoom struct {
	RoomID   string `json:"room_id" validate:"max=64"`
	Username string `json:"username,omitempty" validate:"max=64"`
}

type LeaveRoom struct {
	RoomID   string `json:"room_id" validate:"max=64"`
	Username string `json:"username,omitempty" validate:"max=64"`
}

func (Login) EventName() string       { return EventLogin }
func (SendMessage) EventName() string { return EventSendMessage }
func (CreateRoom) EventName() string  { return EventCreateRoom }
func (JoinRoom) EventName() string    { return EventJoinRoom }
func (LeaveRoom) EventName() string   { return EventLeaveRoom }
