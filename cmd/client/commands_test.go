package main

import (
	"testing"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want command
	}{
		{"blank line", "   ", command{action: actionNone}},
		{"plain text goes to everyone", " hello there ", send(protocol.SendMessage{Username: "alice", Message: "hello there", Room: protocol.GeneralRoom})},
		{"help", "/help", command{action: actionHelp}},
		{"exit", "/exit", command{action: actionExit}},
		{"who", "/who", command{action: actionWho}},
		{"rooms", "/rooms", command{action: actionRooms}},
		{"create keeps spaces in the name", "/create Go Nuts", send(protocol.CreateRoom{RoomName: "Go Nuts", Username: "alice"})},
		{"join", "/join a1b2c3d4", send(protocol.JoinRoom{RoomID: "a1b2c3d4", Username: "alice"})},
		{"leave", "/leave a1b2c3d4", send(protocol.LeaveRoom{RoomID: "a1b2c3d4", Username: "alice"})},
		{"room message", "/room a1b2c3d4 hi all", send(protocol.SendMessage{Username: "alice", Message: "hi all", Room: "a1b2c3d4"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.line, "alice")

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Rejects(t *testing.T) {
	for _, line := range []string{"/create", "/join  ", "/leave", "/room", "/room a1b2c3d4"} {
		t.Run(line, func(t *testing.T) {
			_, err := parseCommand(line, "alice")
			require.ErrorIs(t, err, errUsage)
		})
	}

	_, err := parseCommand("/dance", "alice")
	require.ErrorContains(t, err, "unknown command /dance")
}
