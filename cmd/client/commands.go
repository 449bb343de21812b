package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tyrowin/roomchat/internal/protocol"
)

type action int

const (
	actionSend action = iota
	actionHelp
	actionExit
	actionWho
	actionRooms
	actionNone
)

var errUsage = errors.New("usage")

// command is one parsed line of user input. Event is set only for actionSend.
type command struct {
	action action
	event  protocol.Inbound
}

const helpText = `Commands:
  <text>              send a message to everyone
  /room <id> <text>   send a message to a room
  /create <name>      create a room and join it
  /join <id>          join a room
  /leave <id>         leave a room
  /who                list online users
  /rooms              list known rooms
  /help               show this help
  /exit               disconnect and quit`

// parseCommand turns an input line into a command. Lines that do not start
// with a slash are chat messages for everyone.
func parseCommand(line, username string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{action: actionNone}, nil
	}
	if !strings.HasPrefix(line, "/") {
		return send(protocol.SendMessage{Username: username, Message: line, Room: protocol.GeneralRoom}), nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case "/help":
		return command{action: actionHelp}, nil
	case "/exit", "/quit":
		return command{action: actionExit}, nil
	case "/who":
		return command{action: actionWho}, nil
	case "/rooms":
		return command{action: actionRooms}, nil
	case "/create":
		if rest == "" {
			return command{}, fmt.Errorf("%w: /create <name>", errUsage)
		}
		return send(protocol.CreateRoom{RoomName: rest, Username: username}), nil
	case "/join":
		if rest == "" {
			return command{}, fmt.Errorf("%w: /join <id>", errUsage)
		}
		return send(protocol.JoinRoom{RoomID: rest, Username: username}), nil
	case "/leave":
		if rest == "" {
			return command{}, fmt.Errorf("%w: /leave <id>", errUsage)
		}
		return send(protocol.LeaveRoom{RoomID: rest, Username: username}), nil
	case "/room":
		roomID, text, _ := strings.Cut(rest, " ")
		text = strings.TrimSpace(text)
		if roomID == "" || text == "" {
			return command{}, fmt.Errorf("%w: /room <id> <text>", errUsage)
		}
		return send(protocol.SendMessage{Username: username, Message: text, Room: roomID}), nil
	default:
		return command{}, fmt.Errorf("unknown command %s, try /help", name)
	}
}

func send(evt protocol.Inbound) command {
	return command{action: actionSend, event: evt}
}
