package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foxzi/planry/internal/api"
	"github.com/foxzi/planry/internal/config"
	"github.com/foxzi/planry/internal/export"
	"github.com/foxzi/planry/internal/metrics"
	"github.com/foxzi/planry/internal/session"
)

// App is the main application
type App struct {
	config        *config.Config
	sessions      *session.Store
	archive       *export.Archive
	apiServer     *api.Server
	metricsServer *metrics.Server
	collector     *metrics.Collector
	logger        *slog.Logger
}

// New creates a new application
func New(cfg *config.Config) (*App, error) {
	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Metrics are registered first so that opening the archive records its size
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metrics.SetGlobal(m)
	}

	// Open export archive
	archive, err := export.OpenArchive(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	sessions := session.NewStore(session.StoreConfig{
		DefaultDuration: cfg.Planner.DefaultDuration,
		TTL:             cfg.Planner.SessionExpiry(),
		MaxSessions:     cfg.Planner.SessionLimit(),
		CleanupInterval: cfg.Planner.CleanupInterval,
	}, logger.With("component", "sessions"))

	apiServer := api.NewServer(sessions, archive, &cfg.API, logger.With("component", "api"))

	a := &App{
		config:    cfg,
		sessions:  sessions,
		archive:   archive,
		apiServer: apiServer,
		logger:    logger,
	}

	if m != nil {
		a.metricsServer = metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path,
			cfg.Metrics.AllowedIPs, logger.With("component", "metrics"))
		a.collector = metrics.NewCollector(m, sessions, archive, cfg.Storage.Path, cfg.Metrics.CollectInterval)
	}

	return a, nil
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting planry",
		"api_addr", a.config.API.ListenAddr,
		"archive", a.config.Storage.Path,
		"default_duration", a.config.Planner.DefaultDuration,
		"auth", a.config.API.AuthRequired(),
	)

	// Create context that listens for signals
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start background workers
	a.sessions.Start(ctx)
	if a.collector != nil {
		a.collector.Start(ctx)
	}

	// Channel to collect errors
	errCh := make(chan error, 2)

	// Start API server
	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Start metrics server
	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Wait for shutdown signal or error
	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("server error", "error", runErr)
		cancel()
	}

	// Graceful shutdown
	if err := a.Shutdown(context.Background()); err != nil {
		return err
	}
	return runErr
}

// Shutdown gracefully shuts down all components
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	// Create timeout context
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop accepting requests first
	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Stop background workers
	a.sessions.Stop()
	if a.collector != nil {
		a.collector.Stop()
	}

	// Close archive
	if err := a.archive.Close(); err != nil {
		a.logger.Error("archive close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
