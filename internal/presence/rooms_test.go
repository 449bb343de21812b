package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sequence returns a generator that yields ids in order, repeating the last.
func sequence(ids ...string) IDGenerator {
	i := 0
	return func() string {
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id
	}
}

func TestRoomRegistry_Create(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(nil)

	snap, err := registry.Create("Room1", "alice")

	req.NoError(err)
	req.Len(snap.ID, roomIDLength)
	req.Equal("Room1", snap.Name)
	req.Equal([]string{"alice"}, snap.Members)

	got, ok := registry.Get(snap.ID)
	req.True(ok)
	req.Equal(snap, got)
}

func TestRoomRegistry_Create_Empty_Name(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(nil)

	_, err := registry.Create("  ", "alice")

	req.ErrorIs(err, ErrNameEmpty)
	req.Zero(registry.Len())
}

func TestRoomRegistry_Create_Retries_On_Collision(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(sequence("aaaaaaaa", "aaaaaaaa", "bbbbbbbb"))

	first, err := registry.Create("one", "alice")
	req.NoError(err)
	second, err := registry.Create("two", "bob")
	req.NoError(err)

	req.Equal("aaaaaaaa", first.ID)
	req.Equal("bbbbbbbb", second.ID)
	req.Equal(2, registry.Len())
}

func TestRoomRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(nil)
	snap, err := registry.Create("Room1", "alice")
	req.NoError(err)

	_, err = registry.Join(snap.ID, "bob")
	req.NoError(err)
	joined, err := registry.Join(snap.ID, "bob")
	req.NoError(err)

	req.Equal([]string{"alice", "bob"}, joined.Members)
}

func TestRoomRegistry_Join_Unknown_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(nil)

	_, err := registry.Join("missing", "bob")

	req.ErrorIs(err, ErrRoomNotFound)
	req.Zero(registry.Len())
}

func TestRoomRegistry_Leave(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(nil)
	snap, err := registry.Create("Room1", "alice")
	req.NoError(err)
	_, err = registry.Join(snap.ID, "bob")
	req.NoError(err)

	// When alice leaves, bob remains
	left, ok := registry.Leave(snap.ID, "alice")
	req.True(ok)
	req.False(left.Deleted)
	req.Equal([]string{"bob"}, left.Members)

	// A non member cannot leave
	_, ok = registry.Leave(snap.ID, "alice")
	req.False(ok)

	// When the last member leaves, the room is gone
	left, ok = registry.Leave(snap.ID, "bob")
	req.True(ok)
	req.True(left.Deleted)
	req.Empty(left.Members)
	_, exists := registry.Get(snap.ID)
	req.False(exists)
}

func TestRoomRegistry_LeaveAll(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(sequence("r1", "r2", "r3"))
	_, err := registry.Create("solo", "alice")
	req.NoError(err)
	_, err = registry.Create("shared", "alice")
	req.NoError(err)
	_, err = registry.Join("r2", "bob")
	req.NoError(err)
	_, err = registry.Create("other", "bob")
	req.NoError(err)

	left := registry.LeaveAll("alice")

	req.Equal([]RoomLeave{
		{RoomID: "r1", RoomName: "solo", Deleted: true},
		{RoomID: "r2", RoomName: "shared", Members: []string{"bob"}},
	}, left)
	req.Equal(2, registry.Len())
	for _, snap := range registry.All() {
		req.NotContains(snap.Members, "alice")
		req.NotEmpty(snap.Members)
	}
}
