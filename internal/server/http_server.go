// Package server runs the HTTP listener that carries the health, stats and
// WebSocket routes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	httpReadTimeout  = 15 * time.Second
	httpWriteTimeout = 15 * time.Second
	httpIdleTimeout  = 60 * time.Second
)

// CreateServer builds the HTTP server for addr. The timeouts only cover plain
// HTTP requests; hijacked WebSocket connections manage their own deadlines.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}
}

// StartServer listens on server.Addr and blocks until the server stops.
func StartServer(log *slog.Logger, server *http.Server) error {
	log.Info("HTTP server listening", "addr", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer stops accepting requests and waits up to timeout for
// in-flight ones. WebSocket clients are closed by the hub instead.
func ShutdownServer(log *slog.Logger, server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}
