package presence

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var errConnClosed = errors.New("connection closed")

type fakeConn struct {
	id     string
	mu     sync.Mutex
	frames []protocol.Frame
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errConnClosed
	}
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return err
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.frames))
	for _, frame := range f.frames {
		names = append(names, frame.Event)
	}
	return names
}

func (f *fakeConn) count(event string) int {
	n := 0
	for _, name := range f.events() {
		if name == event {
			n++
		}
	}
	return n
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

// last decodes the most recent frame named event into v.
func (f *fakeConn) last(t *testing.T, event string, v any) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.frames) - 1; i >= 0; i-- {
		if f.frames[i].Event == event {
			require.NoError(t, json.Unmarshal(f.frames[i].Data, v))
			return
		}
	}
	t.Fatalf("connection %s never received %s, got %v", f.id, event, f.frames)
}

func newTestCoordinator(newID IDGenerator) (*Coordinator, *Directory) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dir := NewDirectory(newID)
	return NewCoordinator(log, dir, NewRouter(log, dir)), dir
}

// login connects a fresh fake connection and identifies it as name.
func login(t *testing.T, c *Coordinator, id, name string) *fakeConn {
	t.Helper()
	conn := newFakeConn(id)
	c.Connect(conn)
	_, err := c.Identify(id, protocol.Login{Username: name})
	require.NoError(t, err)
	return conn
}

// requireConsistent checks the directory invariants: every room member is a
// live user and no room is empty.
func requireConsistent(t *testing.T, dir *Directory) {
	t.Helper()
	names := dir.Names()
	for _, snap := range dir.Rooms() {
		require.NotEmpty(t, snap.Members, "room %s is empty", snap.ID)
		for _, member := range snap.Members {
			require.Contains(t, names, member, "room %s holds offline %s", snap.ID, member)
		}
	}
}
