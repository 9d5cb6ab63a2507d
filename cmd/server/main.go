package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/growbucks/internal/app"
	"github.com/iho/growbucks/internal/infrastructure/config"
	"github.com/iho/growbucks/internal/infrastructure/logger"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
	"github.com/iho/growbucks/internal/infrastructure/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	baseLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = baseLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, baseLogger); err != nil {
		baseLogger.Error().Err(err).Msg("server exited with error")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, baseLogger zerolog.Logger) error {
	if cfg.UsesPostgres() {
		if err := postgres.RunMigrations(cfg.DatabaseURL, baseLogger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	application, err := app.New(ctx, cfg, baseLogger, metrics.New())
	if err != nil {
		return err
	}
	defer application.Close()

	server := newServer(cfg, application.Router(promhttp.Handler()))

	serverErr := make(chan error, 1)
	go func() {
		baseLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	baseLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	baseLogger.Info().Msg("server stopped")
	return nil
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
