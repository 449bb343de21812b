// Package server assembles the presence core, the connection hub and the HTTP
// routes into one Server value.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/process"
)

// Server owns every long-lived component of a running chat service.
type Server struct {
	cfg         Config
	log         *slog.Logger
	directory   *presence.Directory
	coordinator *presence.Coordinator
	hub         *Hub
	upgrader    websocket.Upgrader
	process     *process.Process
	startedAt   time.Time
}

// New wires the registries, router, coordinator and hub for cfg.
func New(cfg Config, log *slog.Logger) *Server {
	cfg = cfg.sanitize()
	directory := presence.NewDirectory(presence.ShortUUID)
	coordinator := presence.NewCoordinator(log, directory, presence.NewRouter(log, directory))
	origins := newOriginPolicy(log, cfg.Origins())

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process statistics unavailable", "err", err)
		proc = nil
	}

	return &Server{
		cfg:         cfg,
		log:         log,
		directory:   directory,
		coordinator: coordinator,
		hub:         NewHub(log, cfg, coordinator),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		process:   proc,
		startedAt: time.Now(),
	}
}

// Start runs the hub loop in its own goroutine. It must be called before the
// HTTP server accepts WebSocket connections.
func (s *Server) Start() {
	go s.hub.Run()
	s.log.Info("Hub started and ready to manage WebSocket connections")
}

// Shutdown closes every client connection and waits for their pumps.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.hub.Shutdown(timeout)
}

// Handler returns the HTTP routes of the service.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Directory exposes the presence state for inspection.
func (s *Server) Directory() *presence.Directory {
	return s.directory
}

func (s *Server) Hub() *Hub {
	return s.hub
}
