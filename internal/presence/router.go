package presence

import (
	"log/slog"

	"github.com/Tyrowin/roomchat/internal/protocol"
)

// Scope selects the recipients of a fan-out: every identified user, or the
// members of one room, optionally minus one user.
type Scope struct {
	room    string
	exclude string
}

// Everyone covers all identified users.
func Everyone() Scope {
	return Scope{}
}

// InRoom covers the live members of a room.
func InRoom(roomID string) Scope {
	return Scope{room: roomID}
}

// Except returns a copy of the scope that skips the named user.
func (s Scope) Except(name string) Scope {
	s.exclude = name
	return s
}

func (s Scope) Room() string     { return s.room }
func (s Scope) Excluded() string { return s.exclude }

// Notification is one event the coordinator wants delivered: either straight
// to a connection (To) or fanned out over a scope.
type Notification struct {
	To    Connection
	Scope Scope
	Event protocol.Outbound
}

func reply(conn Connection, evt protocol.Outbound) Notification {
	return Notification{To: conn, Event: evt}
}

func broadcast(scope Scope, evt protocol.Outbound) Notification {
	return Notification{Scope: scope, Event: evt}
}

// Router resolves scopes against the directory and hands encoded events to
// each target. Delivery is best effort: a target that refuses the payload is
// skipped.
type Router struct {
	log *slog.Logger
	dir *Directory
}

func NewRouter(log *slog.Logger, dir *Directory) *Router {
	return &Router{log: log, dir: dir}
}

// Deliver fans evt out over scope and returns the number of connections that
// accepted it.
func (r *Router) Deliver(scope Scope, evt protocol.Outbound) int {
	r.dir.mu.RLock()
	defer r.dir.mu.RUnlock()
	return r.deliver(scope, evt)
}

// Emit delivers a batch of notifications in order.
func (r *Router) Emit(notes []Notification) {
	r.dir.mu.RLock()
	defer r.dir.mu.RUnlock()
	r.emitLocked(notes)
}

// emitLocked is Emit for callers already holding the directory lock.
func (r *Router) emitLocked(notes []Notification) {
	for _, note := range notes {
		if note.To != nil {
			r.send(note.To, note.Event)
			continue
		}
		r.deliver(note.Scope, note.Event)
	}
}

func (r *Router) deliver(scope Scope, evt protocol.Outbound) int {
	payload, err := protocol.Encode(evt)
	if err != nil {
		r.log.Error("Failed to encode event", "event", evt.EventName(), "err", err)
		return 0
	}

	targets := r.dir.resolve(scope)
	delivered := 0
	for _, conn := range targets {
		if r.push(conn, evt.EventName(), payload) {
			delivered++
		}
	}
	r.log.Debug("Event delivered", "event", evt.EventName(), "room", scope.room,
		"targets", len(targets), "delivered", delivered)
	return delivered
}

func (r *Router) send(conn Connection, evt protocol.Outbound) bool {
	payload, err := protocol.Encode(evt)
	if err != nil {
		r.log.Error("Failed to encode event", "event", evt.EventName(), "err", err)
		return false
	}
	return r.push(conn, evt.EventName(), payload)
}

func (r *Router) push(conn Connection, event string, payload []byte) bool {
	if err := conn.Send(payload); err != nil {
		r.log.Debug("Dropped event for unavailable connection", "conn", conn.ID(), "event", event, "err", err)
		return false
	}
	return true
}
