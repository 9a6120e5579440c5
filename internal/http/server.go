// Package http exposes liveness and readiness endpoints for the bot process.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	applog "spesebot/internal/log"
)

// PendingCounter reports how many expenses are waiting for a category.
type PendingCounter interface {
	Len() int
}

type Server struct {
	http.Server
	pending      PendingCounter
	shutdownOnce sync.Once
}

type readiness struct {
	Status         string `json:"status"`
	PendingEntries int    `json:"pending_entries"`
}

// NewServer configures the health routes, returning a ready-to-run http.Server.
func NewServer(addr string, logger *applog.Logger, pending PendingCounter) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           withSecurityHeaders(applog.Middleware(logger)(mux)),
			ReadHeaderTimeout: 5 * time.Second,
		},
		pending: pending,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		applog.FromContext(ctx).WithComponent(applog.ComponentHTTP).InfoContext(ctx, "Health server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the server once; later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	body := readiness{Status: "ready"}
	if s.pending != nil {
		body.PendingEntries = s.pending.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write readiness response", applog.FieldError, err)
	}
}
