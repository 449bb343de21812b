package presence

import "sync"

// Directory owns the identity registry, the room registry and the session
// table behind one lock, so a disconnect that touches all three is applied as
// a single step.
type Directory struct {
	mu         sync.RWMutex
	identities *IdentityRegistry
	rooms      *RoomRegistry
	sessions   map[string]*session
}

// Stats is a point-in-time count of the directory contents.
type Stats struct {
	Connections int `json:"connections"`
	Users       int `json:"users"`
	Rooms       int `json:"rooms"`
}

// NewDirectory returns an empty directory. newID may be nil.
func NewDirectory(newID IDGenerator) *Directory {
	return &Directory{
		identities: NewIdentityRegistry(),
		rooms:      NewRoomRegistry(newID),
		sessions:   make(map[string]*session),
	}
}

// Names returns the roster of identified users in login order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.identities.Names()
}

// Room returns a snapshot of one room.
func (d *Directory) Room(id string) (RoomSnapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rooms.Get(id)
}

// Rooms returns a snapshot of every room.
func (d *Directory) Rooms() []RoomSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rooms.All()
}

// State reports the session state of a connection. Connections that never
// connected or already disconnected report StateDisconnected.
func (d *Directory) State(connID string) State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.sessions[connID]; ok {
		return s.state
	}
	return StateDisconnected
}

func (d *Directory) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Connections: len(d.sessions),
		Users:       d.identities.Len(),
		Rooms:       d.rooms.Len(),
	}
}

// resolve returns the connections a scope currently covers. The caller must
// hold d.mu.
func (d *Directory) resolve(scope Scope) []Connection {
	var names []string
	if scope.room == "" {
		names = d.identities.Names()
	} else {
		snap, ok := d.rooms.Get(scope.room)
		if !ok {
			return nil
		}
		names = snap.Members
	}

	targets := make([]Connection, 0, len(names))
	for _, name := range names {
		if scope.exclude != "" && name == scope.exclude {
			continue
		}
		// Room members without a live identity are skipped.
		if conn, ok := d.identities.Lookup(name); ok {
			targets = append(targets, conn)
		}
	}
	return targets
}
