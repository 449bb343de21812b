package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

var (
	styleInfo    = color.New(color.FgCyan)
	styleError   = color.New(color.FgRed, color.OpBold)
	styleSelf    = color.New(color.FgGreen)
	styleRoom    = color.New(color.FgMagenta)
	stylePresent = color.New(color.FgYellow)
)

// view keeps the client's picture of who is online and which rooms exist,
// built from the events the server pushes.
type view struct {
	mu      sync.Mutex
	colours bool
	me      string
	users   []string
	rooms   map[string]string
}

func newView(colours bool) *view {
	return &view{colours: colours, rooms: make(map[string]string)}
}

func (v *view) paint(style color.Style, s string) string {
	if !v.colours {
		return s
	}
	return style.Render(s)
}

// apply updates the view from one server frame and returns the line to show.
func (v *view) apply(frame protocol.Frame) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch frame.Event {
	case protocol.EventConnectionResponse:
		var evt protocol.ConnectionResponse
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		return v.paint(styleInfo, evt.Message), nil

	case protocol.EventLoginResponse:
		var evt protocol.LoginResponse
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		if !evt.Success {
			return v.paint(styleError, "Login failed: "+evt.Message), nil
		}
		v.me = evt.Username
		v.users = evt.OnlineUsers
		return v.paint(styleInfo, fmt.Sprintf("%s Online: %s", evt.Message, strings.Join(evt.OnlineUsers, ", "))), nil

	case protocol.EventUserJoined:
		var evt protocol.UserJoined
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		v.users = evt.OnlineUsers
		return v.paint(stylePresent, fmt.Sprintf("* %s is online", evt.Username)), nil

	case protocol.EventUserLeft:
		var evt protocol.UserLeft
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		v.users = evt.OnlineUsers
		return v.paint(stylePresent, fmt.Sprintf("* %s went offline", evt.Username)), nil

	case protocol.EventNewMessage:
		var evt protocol.NewMessage
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		author := evt.Username
		if author == v.me {
			author = v.paint(styleSelf, author)
		}
		if evt.Room != "" {
			return fmt.Sprintf("%s <%s> %s", v.paint(styleRoom, "["+v.roomLabel(evt.Room)+"]"), author, evt.Message), nil
		}
		return fmt.Sprintf("<%s> %s", author, evt.Message), nil

	case protocol.EventRoomResponse:
		var evt protocol.RoomResponse
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		if !evt.Success {
			return v.paint(styleError, evt.Message), nil
		}
		for id, info := range evt.Rooms {
			v.rooms[id] = info.Name
		}
		if evt.RoomID != "" {
			v.rooms[evt.RoomID] = evt.RoomName
		}
		if len(evt.Members) > 0 {
			return v.paint(styleRoom, fmt.Sprintf("%s (%s) members: %s", evt.Message, evt.RoomID, strings.Join(evt.Members, ", "))), nil
		}
		return v.paint(styleRoom, fmt.Sprintf("%s (%s)", evt.Message, evt.RoomID)), nil

	case protocol.EventRoomCreated:
		var evt protocol.RoomCreated
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		v.rooms[evt.RoomID] = evt.RoomName
		return v.paint(styleRoom, fmt.Sprintf("* %s created room %s (%s)", evt.Creator, evt.RoomName, evt.RoomID)), nil

	case protocol.EventUserJoinedRoom:
		var evt protocol.UserJoinedRoom
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		return v.paint(styleRoom, fmt.Sprintf("* %s joined [%s]", evt.Username, v.roomLabel(evt.RoomID))), nil

	case protocol.EventUserLeftRoom:
		var evt protocol.UserLeftRoom
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		return v.paint(styleRoom, fmt.Sprintf("* %s left [%s]", evt.Username, v.roomLabel(evt.RoomID))), nil

	case protocol.EventError:
		var evt protocol.Error
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return "", err
		}
		return v.paint(styleError, "Server error: "+evt.Message), nil

	default:
		return fmt.Sprintf("(%s) %s", frame.Event, frame.Data), nil
	}
}

// roomLabel prefers the room's name and falls back to its id. The caller
// holds the lock.
func (v *view) roomLabel(id string) string {
	if name, ok := v.rooms[id]; ok && name != "" {
		return name
	}
	return id
}

func (v *view) writeUsers(w io.Writer) {
	v.mu.Lock()
	users := slices.Clone(v.users)
	me := v.me
	v.mu.Unlock()

	table := newTable(w, "User", "")
	for _, name := range users {
		table.Append([]string{name, lo.Ternary(name == me, "you", "")})
	}
	table.Render()
}

func (v *view) writeRooms(w io.Writer) {
	v.mu.Lock()
	ids := lo.Keys(v.rooms)
	slices.Sort(ids)
	rows := lo.Map(ids, func(id string, _ int) []string { return []string{id, v.rooms[id]} })
	v.mu.Unlock()

	table := newTable(w, "Room ID", "Name")
	table.AppendBulk(rows)
	table.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
