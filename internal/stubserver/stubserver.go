// Package stubserver provides a local, in-memory rendition of the
// lecture-notes backend for development and demos.
//
// It speaks the same wire contract as the real backend: multipart form
// POSTs, JSON responses, and the {"error": "..."} envelope that marks a
// failure even under a 2xx status. State lives in a Store for the
// lifetime of the process; the generation and chat content is canned.
//
// File structure:
//   - stubserver.go: HTTP server setup and lifecycle
//   - store.go: in-memory document/session/selection state
//   - middleware.go: HTTP middleware (logging, recovery)
//   - documents.go: upload and document listing endpoints
//   - sessions.go: session creation endpoint
//   - notes.go: format, generation, chat, and download endpoints
//   - health.go: health probe endpoints
//   - response.go: JSON response helpers
package stubserver

import (
	"context"
	"net/http"
	"time"

	"github.com/lectern0/lectern/internal/log"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout = 60 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the stub backend HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health    *HealthHandler
	documents *DocumentHandler
	sessions  *SessionHandler
	notes     *NotesHandler
}

// NewServer creates a stub server with all routes registered on a fresh
// store.
func NewServer(logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()
	store := NewStore()

	s := &Server{
		mux:       mux,
		logger:    logger,
		health:    NewHealthHandler(logger),
		documents: NewDocumentHandler(store, logger),
		sessions:  NewSessionHandler(store, logger),
		notes:     NewNotesHandler(store, logger),
	}

	s.health.RegisterRoutes(mux)
	s.documents.RegisterRoutes(mux)
	s.sessions.RegisterRoutes(mux)
	s.notes.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger))
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting stub backend", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down stub backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
