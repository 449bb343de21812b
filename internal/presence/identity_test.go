package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityRegistry_Register(t *testing.T) {
	req := require.New(t)
	registry := NewIdentityRegistry()
	alice := newFakeConn("c1")

	// When alice registers with surrounding whitespace
	name, err := registry.Register("  alice ", alice)

	// Then the trimmed name is bound both ways
	req.NoError(err)
	req.Equal("alice", name)
	conn, ok := registry.Lookup("alice")
	req.True(ok)
	req.Equal(alice, conn)
	bound, ok := registry.NameOf("c1")
	req.True(ok)
	req.Equal("alice", bound)
	req.Equal([]string{"alice"}, registry.Names())
}

func TestIdentityRegistry_Register_Empty_Name(t *testing.T) {
	req := require.New(t)
	registry := NewIdentityRegistry()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := registry.Register(name, newFakeConn("c1"))
		req.ErrorIs(err, ErrNameEmpty)
	}
	req.Zero(registry.Len())
}

func TestIdentityRegistry_Register_Name_Taken(t *testing.T) {
	req := require.New(t)
	registry := NewIdentityRegistry()

	// Given alice is registered
	_, err := registry.Register("alice", newFakeConn("c1"))
	req.NoError(err)

	// When another connection claims the same name
	_, err = registry.Register("alice", newFakeConn("c2"))

	// Then it is refused and the first binding is untouched
	req.ErrorIs(err, ErrNameTaken)
	req.Equal(1, registry.Len())
	conn, _ := registry.Lookup("alice")
	req.Equal("c1", conn.ID())
}

func TestIdentityRegistry_Register_Second_Name_On_Same_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewIdentityRegistry()
	conn := newFakeConn("c1")

	_, err := registry.Register("alice", conn)
	req.NoError(err)
	_, err = registry.Register("bob", conn)

	req.ErrorIs(err, ErrInvalidState)
	req.Equal([]string{"alice"}, registry.Names())
}

func TestIdentityRegistry_UnregisterByConn_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewIdentityRegistry()
	_, err := registry.Register("alice", newFakeConn("c1"))
	req.NoError(err)
	_, err = registry.Register("bob", newFakeConn("c2"))
	req.NoError(err)

	name, ok := registry.UnregisterByConn("c1")
	req.True(ok)
	req.Equal("alice", name)

	// A duplicate disconnect has no effect
	_, ok = registry.UnregisterByConn("c1")
	req.False(ok)
	req.Equal([]string{"bob"}, registry.Names())

	// The name is free again
	_, err = registry.Register("alice", newFakeConn("c3"))
	req.NoError(err)
	req.Equal([]string{"bob", "alice"}, registry.Names())
}

func TestIdentityRegistry_Corruption_Panics(t *testing.T) {
	req := require.New(t)
	registry := NewIdentityRegistry()
	_, err := registry.Register("alice", newFakeConn("c1"))
	req.NoError(err)

	// Given the reverse map points at a name the forward map does not hold
	registry.byConn["c1"] = "mallory"

	req.Panics(func() { registry.UnregisterByConn("c1") })
}
