package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/roomchat/internal/server"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.LoadConfig(".env")
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	chat := server.New(cfg, log)
	chat.Start()

	httpServer := server.CreateServer(cfg.Addr(), chat.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.StartServer(log, httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		_ = chat.Shutdown(cfg.ShutdownTimeout)
		return err
	}

	httpErr := server.ShutdownServer(log, httpServer, cfg.ShutdownTimeout)
	hubErr := chat.Shutdown(cfg.ShutdownTimeout)
	if err := errors.Join(httpErr, hubErr); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server stopped cleanly")
	return nil
}
