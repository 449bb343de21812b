package presence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/samber/lo"
)

// Coordinator drives the Connected -> Identified -> Disconnected lifecycle of
// every connection. Each operation mutates the directory under its write lock,
// builds the notifications the change implies and emits them through the
// router before releasing the lock, so every recipient observes events in the
// order the state changed.
type Coordinator struct {
	log    *slog.Logger
	dir    *Directory
	router *Router
	now    func() time.Time
}

func NewCoordinator(log *slog.Logger, dir *Directory, router *Router) *Coordinator {
	return &Coordinator{
		log:    log,
		dir:    dir,
		router: router,
		now:    time.Now,
	}
}

// apply runs op under the directory write lock and emits what it produced.
func (c *Coordinator) apply(event, connID string, op func() ([]Notification, error)) ([]Notification, error) {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()

	notes, err := op()
	if err != nil {
		c.log.Debug("Request rejected", "event", event, "conn", connID, "err", err)
	}
	c.router.emitLocked(notes)
	return notes, err
}

// Connect opens a session for conn and acknowledges it. A second connect for
// the same connection is ignored.
func (c *Coordinator) Connect(conn Connection) []Notification {
	notes, _ := c.apply("connect", conn.ID(), func() ([]Notification, error) {
		if _, exists := c.dir.sessions[conn.ID()]; exists {
			return nil, nil
		}
		c.dir.sessions[conn.ID()] = &session{conn: conn, state: StateConnected}
		c.log.Info("Client connected", "conn", conn.ID(), "connections", len(c.dir.sessions))
		return []Notification{
			reply(conn, protocol.ConnectionResponse{Message: "Connected, please log in"}),
		}, nil
	})
	return notes
}

// Handle dispatches a decoded inbound event for connID.
func (c *Coordinator) Handle(connID string, in protocol.Inbound) ([]Notification, error) {
	switch evt := in.(type) {
	case protocol.Login:
		return c.Identify(connID, evt)
	case protocol.SendMessage:
		return c.SendMessage(connID, evt)
	case protocol.CreateRoom:
		return c.CreateRoom(connID, evt)
	case protocol.JoinRoom:
		return c.JoinRoom(connID, evt)
	case protocol.LeaveRoom:
		return c.LeaveRoom(connID, evt)
	default:
		return nil, fmt.Errorf("%w: %T", protocol.ErrUnknownEvent, in)
	}
}

// Identify binds a name to the connection. It succeeds at most once per
// connection.
func (c *Coordinator) Identify(connID string, req protocol.Login) ([]Notification, error) {
	return c.apply(protocol.EventLogin, connID, func() ([]Notification, error) {
		s, ok := c.dir.sessions[connID]
		if !ok {
			return nil, fmt.Errorf("login: %w", ErrInvalidState)
		}
		fail := func(err error) ([]Notification, error) {
			return []Notification{
				reply(s.conn, protocol.LoginResponse{Success: false, Message: failureMessage(err)}),
			}, err
		}
		if s.state != StateConnected {
			return fail(fmt.Errorf("login while %s: %w", s.state, ErrInvalidState))
		}

		name, err := c.dir.identities.Register(req.Username, s.conn)
		if err != nil {
			return fail(err)
		}
		s.state = StateIdentified
		s.name = name

		roster := c.dir.identities.Names()
		c.log.Info("User logged in", "conn", connID, "user", name, "users", len(roster))
		return []Notification{
			reply(s.conn, protocol.LoginResponse{
				Success:     true,
				Message:     fmt.Sprintf("Welcome %s!", name),
				Username:    name,
				OnlineUsers: roster,
			}),
			broadcast(Everyone().Except(name), protocol.UserJoined{Username: name, OnlineUsers: roster}),
		}, nil
	})
}

// identified returns the session of connID when it may act on rooms and
// messages. The session is nil when the connection is unknown.
func (c *Coordinator) identified(connID string) (*session, error) {
	s, ok := c.dir.sessions[connID]
	if !ok {
		return nil, ErrInvalidState
	}
	if s.state != StateIdentified {
		return s, fmt.Errorf("session %s: %w", s.state, ErrInvalidState)
	}
	return s, nil
}

func roomFailure(s *session, err error) ([]Notification, error) {
	if s == nil {
		return nil, err
	}
	return []Notification{
		reply(s.conn, protocol.RoomResponse{Success: false, Message: failureMessage(err)}),
	}, err
}

// CreateRoom opens a room with the caller as first member. The creator gets
// the whole room list back; everybody else learns about the new room.
func (c *Coordinator) CreateRoom(connID string, req protocol.CreateRoom) ([]Notification, error) {
	return c.apply(protocol.EventCreateRoom, connID, func() ([]Notification, error) {
		s, err := c.identified(connID)
		if err != nil {
			return roomFailure(s, err)
		}
		snap, err := c.dir.rooms.Create(req.RoomName, s.name)
		if err != nil {
			return roomFailure(s, err)
		}

		c.log.Info("Room created", "room", snap.ID, "name", snap.Name, "user", s.name)
		return []Notification{
			reply(s.conn, protocol.RoomResponse{
				Success:  true,
				Message:  fmt.Sprintf("Room %s created", snap.Name),
				RoomID:   snap.ID,
				RoomName: snap.Name,
				Rooms:    c.roomInfos(),
			}),
			broadcast(Everyone().Except(s.name), protocol.RoomCreated{
				RoomID:   snap.ID,
				RoomName: snap.Name,
				Creator:  s.name,
			}),
		}, nil
	})
}

// JoinRoom adds the caller to a room. Joining a room the caller is already
// in answers success again without notifying the other members.
func (c *Coordinator) JoinRoom(connID string, req protocol.JoinRoom) ([]Notification, error) {
	return c.apply(protocol.EventJoinRoom, connID, func() ([]Notification, error) {
		s, err := c.identified(connID)
		if err != nil {
			return roomFailure(s, err)
		}
		roomID := strings.TrimSpace(req.RoomID)
		before, _ := c.dir.rooms.Get(roomID)
		snap, err := c.dir.rooms.Join(roomID, s.name)
		if err != nil {
			return roomFailure(s, err)
		}

		notes := []Notification{
			reply(s.conn, protocol.RoomResponse{
				Success:  true,
				Message:  fmt.Sprintf("Joined room %s", snap.Name),
				RoomID:   snap.ID,
				RoomName: snap.Name,
				Members:  snap.Members,
			}),
		}
		if lo.Contains(before.Members, s.name) {
			return notes, nil
		}

		c.log.Info("User joined room", "room", snap.ID, "user", s.name, "members", len(snap.Members))
		return append(notes, broadcast(InRoom(snap.ID).Except(s.name), protocol.UserJoinedRoom{
			Username: s.name,
			RoomID:   snap.ID,
			Members:  snap.Members,
		})), nil
	})
}

// LeaveRoom removes the caller from a room, deleting the room when it empties.
func (c *Coordinator) LeaveRoom(connID string, req protocol.LeaveRoom) ([]Notification, error) {
	return c.apply(protocol.EventLeaveRoom, connID, func() ([]Notification, error) {
		s, err := c.identified(connID)
		if err != nil {
			return roomFailure(s, err)
		}
		roomID := strings.TrimSpace(req.RoomID)
		left, ok := c.dir.rooms.Leave(roomID, s.name)
		if !ok {
			return roomFailure(s, fmt.Errorf("leave %q: %w", roomID, ErrRoomNotFound))
		}

		c.log.Info("User left room", "room", roomID, "user", s.name, "deleted", left.Deleted)
		notes := []Notification{
			reply(s.conn, protocol.RoomResponse{
				Success:  true,
				Message:  fmt.Sprintf("Left room %s", left.RoomName),
				RoomID:   left.RoomID,
				RoomName: left.RoomName,
				Members:  left.Members,
			}),
		}
		if left.Deleted {
			return notes, nil
		}
		return append(notes, broadcast(InRoom(roomID), protocol.UserLeftRoom{
			Username: s.name,
			RoomID:   roomID,
			Members:  left.Members,
		})), nil
	})
}

// SendMessage relays a chat message to everyone, or to a room's members when
// a room is named. The sender is part of the audience. Messages from
// unidentified connections or to unknown rooms are dropped without a reply.
func (c *Coordinator) SendMessage(connID string, req protocol.SendMessage) ([]Notification, error) {
	return c.apply(protocol.EventSendMessage, connID, func() ([]Notification, error) {
		s, err := c.identified(connID)
		if err != nil {
			return nil, err
		}

		msg := protocol.NewMessage{
			Username:  s.name,
			Message:   req.Message,
			Timestamp: c.timestamp(req.Timestamp),
		}
		roomID := strings.TrimSpace(req.Room)
		if roomID == "" || roomID == protocol.GeneralRoom {
			return []Notification{broadcast(Everyone(), msg)}, nil
		}
		if _, ok := c.dir.rooms.Get(roomID); !ok {
			return nil, fmt.Errorf("message to %q: %w", roomID, ErrRoomNotFound)
		}
		msg.Room = roomID
		return []Notification{broadcast(InRoom(roomID), msg)}, nil
	})
}

// Disconnect ends the session of connID. An identified user is removed from
// the roster and from every room in the same step; surviving rooms and the
// remaining users are told. Repeated calls are no-ops.
func (c *Coordinator) Disconnect(connID string) []Notification {
	notes, _ := c.apply("disconnect", connID, func() ([]Notification, error) {
		s, ok := c.dir.sessions[connID]
		if !ok {
			return nil, nil
		}
		delete(c.dir.sessions, connID)
		s.state = StateDisconnected
		if s.name == "" {
			c.log.Info("Client disconnected", "conn", connID, "connections", len(c.dir.sessions))
			return nil, nil
		}

		name, ok := c.dir.identities.UnregisterByConn(connID)
		if !ok || name != s.name {
			panic(fmt.Sprintf("presence: session %s bound to %q but registry holds %q", connID, s.name, name))
		}

		var notes []Notification
		for _, left := range c.dir.rooms.LeaveAll(name) {
			if left.Deleted {
				c.log.Info("Room removed", "room", left.RoomID)
				continue
			}
			notes = append(notes, broadcast(InRoom(left.RoomID), protocol.UserLeftRoom{
				Username: name,
				RoomID:   left.RoomID,
				Members:  left.Members,
			}))
		}
		roster := c.dir.identities.Names()
		c.log.Info("User disconnected", "conn", connID, "user", name, "users", len(roster))
		return append(notes, broadcast(Everyone(), protocol.UserLeft{Username: name, OnlineUsers: roster})), nil
	})
	return notes
}

func (c *Coordinator) roomInfos() map[string]protocol.RoomInfo {
	return lo.SliceToMap(c.dir.rooms.All(), func(r RoomSnapshot) (string, protocol.RoomInfo) {
		return r.ID, protocol.RoomInfo{Name: r.Name, Members: r.Members}
	})
}

// timestamp keeps the client's timestamp when it sent one and stamps the
// server time otherwise.
func (c *Coordinator) timestamp(client json.RawMessage) json.RawMessage {
	if len(client) > 0 && string(client) != "null" {
		return client
	}
	stamp, _ := json.Marshal(c.now().UTC().Format(time.RFC3339))
	return stamp
}
