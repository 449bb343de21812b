package main

import (
	"bytes"
	"testing"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/stretchr/testify/require"
)

func frameOf(t *testing.T, evt protocol.Outbound) protocol.Frame {
	t.Helper()
	raw, err := protocol.Encode(evt)
	require.NoError(t, err)
	frame, err := protocol.DecodeFrame(raw)
	require.NoError(t, err)
	return frame
}

func TestView_Tracks_Roster(t *testing.T) {
	req := require.New(t)
	v := newView(false)

	// Given alice is logged in
	line, err := v.apply(frameOf(t, protocol.LoginResponse{
		Success: true, Message: "Welcome alice!", Username: "alice", OnlineUsers: []string{"alice"},
	}))
	req.NoError(err)
	req.Equal("Welcome alice! Online: alice", line)

	// When bob comes and goes
	line, err = v.apply(frameOf(t, protocol.UserJoined{Username: "bob", OnlineUsers: []string{"alice", "bob"}}))
	req.NoError(err)
	req.Equal("* bob is online", line)
	req.Equal([]string{"alice", "bob"}, v.users)

	_, err = v.apply(frameOf(t, protocol.UserLeft{Username: "bob", OnlineUsers: []string{"alice"}}))
	req.NoError(err)

	// Then only alice is listed
	var out bytes.Buffer
	v.writeUsers(&out)
	req.Contains(out.String(), "alice")
	req.NotContains(out.String(), "bob")
}

func TestView_Labels_Rooms(t *testing.T) {
	req := require.New(t)
	v := newView(false)

	_, err := v.apply(frameOf(t, protocol.RoomCreated{RoomID: "a1b2c3d4", RoomName: "Room1", Creator: "bob"}))
	req.NoError(err)

	line, err := v.apply(frameOf(t, protocol.NewMessage{Username: "bob", Message: "hi", Room: "a1b2c3d4", Timestamp: []byte(`"now"`)}))
	req.NoError(err)
	req.Equal("[Room1] <bob> hi", line)

	line, err = v.apply(frameOf(t, protocol.NewMessage{Username: "bob", Message: "hello", Timestamp: []byte(`null`)}))
	req.NoError(err)
	req.Equal("<bob> hello", line)

	// Unknown rooms fall back to their id
	line, err = v.apply(frameOf(t, protocol.UserLeftRoom{Username: "carol", RoomID: "ffffffff", Members: []string{"dave"}}))
	req.NoError(err)
	req.Equal("* carol left [ffffffff]", line)

	var out bytes.Buffer
	v.writeRooms(&out)
	req.Contains(out.String(), "a1b2c3d4")
	req.Contains(out.String(), "Room1")
}

func TestView_Failures(t *testing.T) {
	req := require.New(t)
	v := newView(false)

	line, err := v.apply(frameOf(t, protocol.LoginResponse{Success: false, Message: "Username already taken"}))
	req.NoError(err)
	req.Equal("Login failed: Username already taken", line)
	req.Empty(v.me)

	line, err = v.apply(frameOf(t, protocol.RoomResponse{Success: false, Message: "Room not found"}))
	req.NoError(err)
	req.Equal("Room not found", line)

	_, err = v.apply(protocol.Frame{Event: protocol.EventUserJoined, Data: []byte(`[]`)})
	req.Error(err)
}
