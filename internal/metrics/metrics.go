// Package metrics exposes the liveness probe and Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	updates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paybot",
		Name:      "updates_total",
		Help:      "Inbound Telegram updates by kind",
	}, []string{"kind"})

	handlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paybot",
		Name:      "handler_errors_total",
		Help:      "Handler errors and recovered panics by kind",
	}, []string{"kind"})
)

// ObserveUpdate counts one inbound update.
func ObserveUpdate(kind string) {
	updates.WithLabelValues(kind).Inc()
}

// ObserveError counts one handler failure; kind is "error" or "panic".
func ObserveError(kind string) {
	handlerErrors.WithLabelValues(kind).Inc()
}

// Pinger checks a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves /healthz and /metrics.
type Server struct {
	srv *http.Server
}

// NewRouter builds the HTTP routes. db may be nil.
func NewRouter(db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("Health check failed")
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// NewServer creates a server on addr.
func NewServer(addr string, db Pinger) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(db),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("Metrics server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
