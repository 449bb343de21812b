package presence

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// IdentityRegistry binds display names to live connections and back.
// It is not safe for concurrent use; the Directory lock guards it.
type IdentityRegistry struct {
	byName map[string]Connection
	byConn map[string]string
	order  []string
}

// NewIdentityRegistry returns an empty registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		byName: make(map[string]Connection),
		byConn: make(map[string]string),
	}
}

// Register binds name to conn. Leading and trailing whitespace is not part of
// the name. A connection that already holds a name cannot take a second one.
func (r *IdentityRegistry) Register(name string, conn Connection) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameEmpty
	}
	if _, taken := r.byName[name]; taken {
		return "", fmt.Errorf("%q: %w", name, ErrNameTaken)
	}
	if held, ok := r.byConn[conn.ID()]; ok {
		return "", fmt.Errorf("connection already identified as %q: %w", held, ErrInvalidState)
	}

	r.byName[name] = conn
	r.byConn[conn.ID()] = name
	r.order = append(r.order, name)
	r.checkConsistency(name, conn.ID())
	return name, nil
}

// UnregisterByConn removes the identity bound to connID and returns its name.
// Calling it again for the same connection is a no-op.
func (r *IdentityRegistry) UnregisterByConn(connID string) (string, bool) {
	name, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	r.checkConsistency(name, connID)

	delete(r.byConn, connID)
	delete(r.byName, name)
	r.order = lo.Without(r.order, name)
	return name, true
}

// Lookup returns the connection currently bound to name.
func (r *IdentityRegistry) Lookup(name string) (Connection, bool) {
	conn, ok := r.byName[name]
	return conn, ok
}

// NameOf returns the name bound to connID, if any.
func (r *IdentityRegistry) NameOf(connID string) (string, bool) {
	name, ok := r.byConn[connID]
	return name, ok
}

// Names returns the roster in login order.
func (r *IdentityRegistry) Names() []string {
	return append([]string{}, r.order...)
}

// Connections returns every identified connection.
func (r *IdentityRegistry) Connections() []Connection {
	return lo.Map(r.order, func(name string, _ int) Connection {
		return r.byName[name]
	})
}

func (r *IdentityRegistry) Len() int {
	return len(r.byName)
}

// checkConsistency panics when the forward and reverse maps disagree, which
// can only mean the registry has been corrupted.
func (r *IdentityRegistry) checkConsistency(name, connID string) {
	conn, ok := r.byName[name]
	if !ok || conn.ID() != connID || r.byConn[connID] != name {
		panic(fmt.Sprintf("presence: identity registry corrupted for %q on connection %s", name, connID))
	}
}
