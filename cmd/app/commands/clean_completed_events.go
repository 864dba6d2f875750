package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
)

// RunCleanCompletedEvents deletes completed sync events older than the given
// age. Supports dry-run mode to preview the deletion count and both text/JSON
// output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanCompletedEvents(
	ctx context.Context,
	eventUseCase syncUseCase.EventUseCase,
	logger *slog.Logger,
	out io.Writer,
	olderThan time.Duration,
	dryRun bool,
	format string,
) error {
	if olderThan < 0 {
		return fmt.Errorf("older-than must be a positive duration, got: %s", olderThan)
	}

	logger.Info("cleaning completed sync events",
		slog.Duration("older_than", olderThan),
		slog.Bool("dry_run", dryRun),
	)

	count, err := eventUseCase.CleanupCompleted(ctx, olderThan, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean completed events: %w", err)
	}

	if format == "json" {
		outputCleanJSON(out, count, olderThan, dryRun)
	} else {
		outputCleanText(out, count, olderThan, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Duration("older_than", olderThan),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(out io.Writer, count int64, olderThan time.Duration, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would delete %d completed event(s) older than %s\n", count, olderThan)
	} else {
		fmt.Fprintf(out, "Successfully deleted %d completed event(s) older than %s\n", count, olderThan)
	}
}

// outputCleanJSON outputs the result in JSON format for machine consumption.
func outputCleanJSON(out io.Writer, count int64, olderThan time.Duration, dryRun bool) {
	result := map[string]interface{}{
		"count":      count,
		"older_than": olderThan.String(),
		"dry_run":    dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
