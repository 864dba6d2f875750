package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/app"
	"github.com/fitsync/fitsync/internal/config"
)

// RunWorker starts the sync engine for one owner without the API server.
// Intended for headless deployments where another process serves the API.
// The metrics server still runs when metrics are enabled. Blocks until
// receiving SIGINT/SIGTERM or encountering a fatal error.
func RunWorker(ctx context.Context, version string, owner string) error {
	cfg := config.Load()

	if owner == "" {
		owner = cfg.SyncOwnerID
	}
	if owner == "" {
		return fmt.Errorf("owner is required: pass --owner or set SYNC_OWNER_ID")
	}

	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting worker",
		slog.String("version", version),
		slog.String("owner_id", ownerID.String()))

	defer closeContainer(container, logger)

	engine, err := container.SyncEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize sync engine: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	// The engine is stopped by the container on shutdown.
	if err := engine.Start(ownerID); err != nil {
		return fmt.Errorf("failed to start sync engine: %w", err)
	}
	logger.Info("sync engine started", slog.String("owner_id", ownerID.String()))

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("metrics server shutdown: %w", err)
			}
		}
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()

		var shutdownErrors []error
		shutdownErrors = append(shutdownErrors, err)

		if metricsServer != nil {
			if shutErr := metricsServer.Shutdown(shutdownCtx); shutErr != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", shutErr))
			}
		}

		return errors.Join(shutdownErrors...)
	}

	return nil
}
