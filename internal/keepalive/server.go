// Package keepalive serves the liveness HTTP endpoint hosting platforms
// probe. It runs beside the bridge and shares no mutable state with the
// core beyond a read-only pending-request counter.
package keepalive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server is the liveness endpoint.
type Server struct {
	addr      string
	pendingFn func() int // read-only view into the correlation table
	started   time.Time
}

// New creates a keepalive server. pendingFn may be nil.
func New(host string, port int, pendingFn func() int) *Server {
	return &Server{
		addr:      fmt.Sprintf("%s:%d", host, port),
		pendingFn: pendingFn,
	}
}

// routes builds the handler mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintln(w, "relayclaw bridge is running.")
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	pending := 0
	if s.pendingFn != nil {
		pending = s.pendingFn()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"pending": pending,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.started = time.Now()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("keepalive endpoint listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("keepalive server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
