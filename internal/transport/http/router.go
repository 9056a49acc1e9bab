package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ecdash/internal/config"
	"ecdash/internal/infrastructure"
	"ecdash/internal/middleware"
)

// NewRouter assembles the full HTTP surface: middleware chain, the dashboard
// API under /api, liveness and metrics.
func NewRouter(cfg *config.Config, service DashboardService, metrics *infrastructure.Metrics, version string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(metrics))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	r.Mount("/api", NewDashboardHandler(service, logger).Routes())

	health := NewHealthHandler(version)
	r.Get("/healthz", health.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
