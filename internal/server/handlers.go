// Package server exposes HTTP handlers: WebSocket upgrades, health checks and
// runtime statistics.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Tyrowin/roomchat/internal/presence"
)

// WebSocketHandler handles WebSocket upgrade requests. It validates that the
// request uses the GET method, upgrades the connection and registers a new
// Client with the hub, which starts its pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "err", err)
		return
	}

	client := NewClient(conn, s.hub, r.RemoteAddr)
	if err := s.hub.Register(client); err != nil {
		s.log.Warn("Rejecting client", "addr", r.RemoteAddr, "err", err)
		_ = conn.Close()
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat server is running!")
}

type statsResponse struct {
	presence.Stats
	Clients    int     `json:"clients"`
	Uptime     string  `json:"uptime"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
}

// StatsHandler reports presence counts and process resource usage as JSON.
func (s *Server) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		Stats:   s.directory.Stats(),
		Clients: s.hub.ClientCount(),
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	}
	if s.process != nil {
		if mem, err := s.process.MemoryInfo(); err == nil {
			resp.RSSBytes = mem.RSS
		}
		if cpu, err := s.process.CPUPercent(); err == nil {
			resp.CPUPercent = cpu
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("Error writing stats response", "err", err)
	}
}
