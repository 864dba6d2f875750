// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/fitsync/fitsync/cmd/app/commands"
	"github.com/fitsync/fitsync/internal/app"
	"github.com/fitsync/fitsync/internal/config"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "fitsync",
		Usage:   "Local-first fitness tracker with a transactional-outbox sync engine",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server and sync engine",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "worker",
				Usage: "Start the sync engine without the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "owner",
						Aliases: []string{"o"},
						Usage:   "Owner ID (UUID); defaults to SYNC_OWNER_ID",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version, cmd.String("owner"))
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "clean-completed-events",
				Usage: "Delete completed sync events older than the given age",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "older-than",
						Aliases: []string{"o"},
						Value:   24 * time.Hour,
						Usage:   "Delete completed events older than this duration (e.g. 24h, 30m)",
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Show how many events would be deleted without deleting",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withEventUseCase(ctx, func(ctx context.Context, deps eventCommandDeps) error {
						return commands.RunCleanCompletedEvents(
							ctx,
							deps.eventUseCase,
							deps.logger,
							os.Stdout,
							cmd.Duration("older-than"),
							cmd.Bool("dry-run"),
							cmd.String("format"),
						)
					})
				},
			},
			{
				Name:  "list-failed-events",
				Usage: "List failed sync events for an owner",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "Owner ID (UUID)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   50,
						Usage:   "Maximum number of events to list",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withEventUseCase(ctx, func(ctx context.Context, deps eventCommandDeps) error {
						return commands.RunListFailedEvents(
							ctx,
							deps.eventUseCase,
							deps.logger,
							os.Stdout,
							cmd.String("owner"),
							int(cmd.Int("limit")),
							cmd.String("format"),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// eventCommandDeps bundles what the operator queue commands need.
type eventCommandDeps struct {
	eventUseCase syncUseCase.EventUseCase
	logger       *slog.Logger
}

// withEventUseCase builds the container, hands the event use case to the
// command, and shuts the container down afterwards.
func withEventUseCase(ctx context.Context, fn func(ctx context.Context, deps eventCommandDeps) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	eventUseCase, err := container.EventUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize event use case: %w", err)
	}

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(ctx, eventCommandDeps{eventUseCase: eventUseCase, logger: logger})
}
