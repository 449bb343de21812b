// Package server wires HTTP handlers into a gorilla/mux router.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// setupRoutes configures the health check, stats and WebSocket endpoints.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", HealthHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/stats", s.StatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.WebSocketHandler)
	return r
}
