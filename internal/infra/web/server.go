package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	red "support-duty-bot/internal/infra/redis"
)

// Server exposes the ops endpoints: liveness/readiness and Prometheus
// metrics. It carries no bot functionality.
type Server struct {
	pool   *pgxpool.Pool
	redis  *red.Client
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(port int, pool *pgxpool.Pool, redis *red.Client, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "OpsServer").Logger()
	s := &Server{pool: pool, redis: redis, log: &compLog}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("ops server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		s.log.Error().Err(err).Msg("healthz: postgres ping failed")
		http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
		return
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			s.log.Error().Err(err).Msg("healthz: redis ping failed")
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
