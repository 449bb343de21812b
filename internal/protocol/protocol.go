// Package protocol defines the JSON frames exchanged over the chat WebSocket.
//
// Every frame is an envelope {"event": "<name>", "data": {...}}. Inbound and
// outbound payloads are explicit structs, one per event name; inbound payloads
// are validated when decoded so the core never sees a half-filled request.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	EventLogin       = "login"
	EventSendMessage = "send_message"
	EventCreateRoom  = "create_room"
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"

	EventConnectionResponse = "connection_response"
	EventLoginResponse      = "login_response"
	EventUserJoined         = "user_joined"
	EventNewMessage         = "new_message"
	EventRoomResponse       = "room_response"
	EventRoomCreated        = "room_created"
	EventUserJoinedRoom     = "user_joined_room"
	EventUserLeftRoom       = "user_left_room"
	EventUserLeft           = "user_left"
	EventError              = "error"
)

// GeneralRoom is the room name clients use for the lobby, i.e. everyone.
const GeneralRoom = "general"

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownEvent   = errors.New("unknown event")
)

var validate = validator.New()

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is an event sent by a client.
type Inbound interface {
	EventName() string
}

// Outbound is an event sent to clients.
type Outbound interface {
	EventName() string
}

var decoders = map[string]func(json.RawMessage) (Inbound, error){
	EventLogin:       decodeAs[Login],
	EventSendMessage: decodeAs[SendMessage],
	EventCreateRoom:  decodeAs[CreateRoom],
	EventJoinRoom:    decodeAs[JoinRoom],
	EventLeaveRoom:   decodeAs[LeaveRoom],
}

// Decode parses one inbound frame and validates its payload.
func Decode(frame []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	decode, ok := decoders[env.Event]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	return decode(env.Data)
}

func decodeAs[T Inbound](data json.RawMessage) (Inbound, error) {
	var evt T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &evt); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, evt.EventName(), err)
		}
	}
	if err := validate.Struct(evt); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, evt.EventName(), err)
	}
	return evt, nil
}

// Encode wraps an outbound event in its envelope.
func Encode(evt Outbound) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", evt.EventName(), err)
	}
	return json.Marshal(envelope{Event: evt.EventName(), Data: data})
}

// EncodeInbound wraps a client request in its envelope.
func EncodeInbound(evt Inbound) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", evt.EventName(), err)
	}
	return json.Marshal(envelope{Event: evt.EventName(), Data: data})
}

// Frame is an outbound frame decoded on the client side. Data is left raw
// until the caller knows which payload to expect.
type Frame struct {
	Event string
	Data  json.RawMessage
}

// DecodeFrame splits an outbound frame into its event name and raw payload.
func DecodeFrame(frame []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	return Frame{Event: env.Event, Data: env.Data}, nil
}
