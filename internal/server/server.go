// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration. The write
// timeout leaves headroom over the generation deadline so slow model
// calls do not get cut off mid-response.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8000,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server with graceful shutdown and optional
// close hooks for resources that outlive individual requests.
type Server struct {
	config Config
	http   *http.Server
	log    *slog.Logger
	closes []func() error
}

// NewServer wires the handler into an HTTP server.
func NewServer(handler http.Handler, config Config, log *slog.Logger) *Server {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return &Server{
		config: config,
		http:   httpServer,
		log:    log,
	}
}

// OnClose registers a hook run during Shutdown, after the HTTP server
// has drained. Hooks run in registration order.
func (s *Server) OnClose(fn func() error) {
	s.closes = append(s.closes, fn)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(_ context.Context) error {
	s.log.Info("starting HTTP server", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and runs the close hooks.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	for _, fn := range s.closes {
		if err := fn(); err != nil {
			return fmt.Errorf("close hook error: %w", err)
		}
	}

	s.log.Info("server shutdown complete")
	return nil
}
