package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownTimeout is the maximum time to wait for in-flight requests to finish.
const ShutdownTimeout = 30 * time.Second

// shutdownOnSignal blocks until SIGINT or SIGTERM is received or one of the
// servers fails, then drains every server. A second signal forces exit.
func shutdownOnSignal(servers []*http.Server, serveErr <-chan error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String(), "timeout", ShutdownTimeout)
	case runErr = <-serveErr:
		slog.Error("server stopped unexpectedly", "error", runErr)
	}

	go func() {
		sig := <-sigCh
		slog.Warn("forced shutdown", "signal", sig.String())
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func(s *http.Server) {
			defer wg.Done()
			if err := s.Shutdown(ctx); err != nil {
				slog.Error("HTTP server shutdown error", "addr", s.Addr, "error", err)
			}
		}(srv)
	}
	wg.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		slog.Warn("forced shutdown after timeout")
	}
	slog.Info("shutdown complete")
	return runErr
}
