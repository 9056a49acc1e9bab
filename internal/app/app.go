// Package app wires configuration, logging, metrics, the dashboard service
// and the HTTP server into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecdash/internal/config"
	"ecdash/internal/infrastructure"
	"ecdash/internal/registry"
	"ecdash/internal/services"
	transport "ecdash/internal/transport/http"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Application is the assembled web application.
type Application struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *services.DashboardService
	server  *http.Server
}

// New loads configuration and assembles the application.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	metrics := infrastructure.NewMetrics()
	service := services.NewDashboardService(cfg.Paths.DataDir, registry.Default(), logger)
	router := transport.NewRouter(cfg, service, metrics, Version, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		cfg:     cfg,
		logger:  logger,
		service: service,
		server:  server,
	}, nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully within the configured timeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			slog.String("addr", a.server.Addr),
			slog.String("version", Version),
			slog.String("data_dir", a.cfg.Paths.DataDir))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// warmup loads the dataset once at startup so the first request does not pay
// the parse cost. Load failures are logged, not fatal; the data directory may
// be populated later.
func (a *Application) warmup(ctx context.Context) {
	start := time.Now()
	if _, err := a.service.Load(ctx); err != nil {
		a.logger.Warn("startup data load failed",
			slog.String("error", err.Error()))
		return
	}
	a.logger.Info("startup data load complete",
		slog.Duration("duration", time.Since(start)))
}

// Warmup triggers the startup dataset load in the background.
func (a *Application) Warmup() {
	go a.warmup(context.Background())
}
