// Command client is a terminal chat client for the room chat server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/gorilla/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := bufio.NewScanner(os.Stdin)
	username := strings.TrimSpace(cfg.Username)
	for username == "" {
		fmt.Print("Username: ")
		if !input.Scan() {
			return input.Err()
		}
		username = strings.TrimSpace(input.Text())
	}

	header := http.Header{}
	if cfg.Origin != "" {
		header.Set("Origin", cfg.Origin)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, cfg.ServerURL, header)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.ServerURL, err)
	}
	_ = resp.Body.Close()
	defer conn.Close()
	fmt.Printf("Connected to %s\n", cfg.ServerURL)

	v := newView(cfg.Colours)
	readErr := make(chan error, 1)
	go func() { readErr <- receive(conn, v, os.Stdout) }()

	if err := write(conn, protocol.Login{Username: username}); err != nil {
		return err
	}
	fmt.Println(helpText)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for input.Scan() {
			lines <- input.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return hangUp(conn)
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return hangUp(conn)
			}
			cmd, err := parseCommand(line, username)
			if err != nil {
				fmt.Println(v.paint(styleError, err.Error()))
				continue
			}
			switch cmd.action {
			case actionExit:
				fmt.Println("Disconnecting...")
				return hangUp(conn)
			case actionHelp:
				fmt.Println(helpText)
			case actionWho:
				v.writeUsers(os.Stdout)
			case actionRooms:
				v.writeRooms(os.Stdout)
			case actionSend:
				if err := write(conn, cmd.event); err != nil {
					return err
				}
			}
		}
	}
}

// receive prints every server event until the connection ends. A close
// initiated by either side is not an error.
func receive(conn *websocket.Conn, v *view, out io.Writer) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				fmt.Fprintln(out, "Server closed the connection")
				return nil
			}
			return fmt.Errorf("reading from server: %w", err)
		}
		frame, err := protocol.DecodeFrame(raw)
		if err != nil {
			fmt.Fprintln(out, v.paint(styleError, "Unreadable frame: "+err.Error()))
			continue
		}
		line, err := v.apply(frame)
		if err != nil {
			fmt.Fprintln(out, v.paint(styleError, fmt.Sprintf("Bad %s event: %v", frame.Event, err)))
			continue
		}
		fmt.Fprintln(out, line)
	}
}

func write(conn *websocket.Conn, evt protocol.Inbound) error {
	frame, err := protocol.EncodeInbound(evt)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("sending %s: %w", evt.EventName(), err)
	}
	return nil
}

func hangUp(conn *websocket.Conn) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	fmt.Println("Disconnected")
	return nil
}
