// Package server tracks live WebSocket clients via the Hub type, which starts
// their pumps, reports connects and disconnects to the presence coordinator
// and closes every connection on shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/presence"
)

var errHubStopped = errors.New("hub is shut down")

// Hub manages all WebSocket client connections. Registration and
// unregistration are serialized through its event loop; routing of chat
// events is left to the coordinator.
type Hub struct {
	log         *slog.Logger
	cfg         Config
	coordinator *presence.Coordinator
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewHub creates a hub that reports client lifecycle events to coordinator.
func NewHub(log *slog.Logger, cfg Config, coordinator *presence.Coordinator) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		log:         log,
		cfg:         cfg,
		coordinator: coordinator,
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Register hands a freshly upgraded client to the hub, which starts its pumps.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return errHubStopped
	}
}

// Unregister reports that a client's read side has ended. After shutdown the
// client is removed directly.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.removeClient(client)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run starts the hub's main event loop, handling client registration and
// unregistration. It returns once Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mutex.Unlock()
	h.log.Info("Client registered", "conn", client.ID(), "addr", client.addr, "clients", clientCount)

	h.coordinator.Connect(client)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// removeClient ends the client's session and stops its write pump. Calling
// it twice for the same client has no further effect.
func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	h.coordinator.Disconnect(client.ID())
	client.close()
	if ok {
		h.log.Info("Client unregistered", "conn", client.ID(), "addr", client.addr, "clients", clientCount)
	}
}

// shutdownClients closes every client connection, which ends their read pumps.
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
			h.log.Warn("Error closing client connection", "conn", client.ID(), "err", err)
		}
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
