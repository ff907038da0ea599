package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rug/pkg/logging"
)

const (
	subsystem = "Metrics"

	// DefaultReadHeaderTimeout bounds how long a scrape may take to send headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Health is the body served on /healthz.
type Health struct {
	Status    string `json:"status"`
	Bootstrap string `json:"bootstrap"`
	Routers   int    `json:"routers"`
	QueueLen  int    `json:"queueLength"`
	Scheduled int    `json:"scheduled"`

	// Events counts handled events by operation kind.
	Events map[string]int `json:"events,omitempty"`
}

// HealthFunc reports the current health of the process.
type HealthFunc func() Health

// Server serves /metrics and /healthz.
type Server struct {
	addr   string
	health HealthFunc
	router chi.Router
}

// NewServer builds the HTTP routes. A nil health func reports "ok" only.
func NewServer(addr string, health HealthFunc) *Server {
	if health == nil {
		health = func() Health { return Health{Status: "ok"} }
	}

	s := &Server{addr: addr, health: health, router: chi.NewRouter()}
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return s
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start metrics server on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	logging.Info(subsystem, "Serving metrics on %s", listener.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn(subsystem, "Metrics server shutdown: %v", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.health()
	if h.Status == "" {
		h.Status = "ok"
	}

	status := http.StatusOK
	if h.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(h); err != nil {
		logging.Debug(subsystem, "Failed to write health response: %v", err)
	}
}
