package presence

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/Tyrowin/roomchat/internal/mocks"
	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockConn(ctrl *gomock.Controller, id string) *mocks.MockConnection {
	conn := mocks.NewMockConnection(ctrl)
	conn.EXPECT().ID().Return(id).AnyTimes()
	return conn
}

func TestRouter_Deliver_Everyone_Except_Sender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dir := NewDirectory(nil)
	router := NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), dir)

	alice := newMockConn(ctrl, "c1")
	bob := newMockConn(ctrl, "c2")
	carol := newMockConn(ctrl, "c3")
	for name, conn := range map[string]Connection{"alice": alice, "bob": bob, "carol": carol} {
		_, err := dir.identities.Register(name, conn)
		req.NoError(err)
	}
	evt := protocol.UserJoined{Username: "alice", OnlineUsers: []string{"alice", "bob", "carol"}}
	expected, err := protocol.Encode(evt)
	req.NoError(err)

	// Given bob and carol accept the payload once each, alice is never called
	bob.EXPECT().Send(expected).Return(nil).Times(1)
	carol.EXPECT().Send(expected).Return(nil).Times(1)

	// When the event is delivered to everyone except alice
	delivered := router.Deliver(Everyone().Except("alice"), evt)

	// Then both other users received it
	req.Equal(2, delivered)
}

func TestRouter_Deliver_Skips_Stale_Connection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dir := NewDirectory(nil)
	router := NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), dir)

	alice := newMockConn(ctrl, "c1")
	bob := newMockConn(ctrl, "c2")
	_, err := dir.identities.Register("alice", alice)
	req.NoError(err)
	_, err = dir.identities.Register("bob", bob)
	req.NoError(err)

	// Given alice's outbound queue is already closed
	alice.EXPECT().Send(gomock.Any()).Return(errors.New("send buffer full")).Times(1)
	bob.EXPECT().Send(gomock.Any()).Return(nil).Times(1)

	delivered := router.Deliver(Everyone(), protocol.NewMessage{
		Username: "bob", Message: "hi", Timestamp: json.RawMessage(`"now"`),
	})

	// Then delivery carries on past the failure
	req.Equal(1, delivered)
}

func TestRouter_Deliver_Room_Only_Reaches_Live_Members(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dir := NewDirectory(sequence("room0001"))
	router := NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), dir)

	alice := newMockConn(ctrl, "c1")
	outsider := newMockConn(ctrl, "c2")
	_, err := dir.identities.Register("alice", alice)
	req.NoError(err)
	_, err = dir.identities.Register("outsider", outsider)
	req.NoError(err)

	// Given a room that also lists a member with no live identity
	_, err = dir.rooms.Create("Room1", "alice")
	req.NoError(err)
	_, err = dir.rooms.Join("room0001", "ghost")
	req.NoError(err)

	alice.EXPECT().Send(gomock.Any()).Return(nil).Times(1)

	delivered := router.Deliver(InRoom("room0001"), protocol.NewMessage{Username: "alice", Message: "hi", Room: "room0001"})

	req.Equal(1, delivered)
}

func TestRouter_Deliver_Unknown_Room(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dir := NewDirectory(nil)
	router := NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), dir)

	alice := newMockConn(ctrl, "c1")
	_, err := dir.identities.Register("alice", alice)
	req.NoError(err)

	req.Zero(router.Deliver(InRoom("missing"), protocol.Error{Message: "x"}))
}

func TestRouter_Emit_Direct_Reply(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewDirectory(nil)
	router := NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), dir)

	// An unidentified connection can still be answered directly
	conn := newMockConn(ctrl, "c1")
	evt := protocol.ConnectionResponse{Message: "hello"}
	expected, err := protocol.Encode(evt)
	require.NoError(t, err)
	conn.EXPECT().Send(expected).Return(nil).Times(1)

	router.Emit([]Notification{reply(conn, evt)})
}
