package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
)

// RunListFailedEvents prints the owner's failed sync events for diagnostics.
// Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunListFailedEvents(
	ctx context.Context,
	eventUseCase syncUseCase.EventUseCase,
	logger *slog.Logger,
	out io.Writer,
	owner string,
	limit int,
	format string,
) error {
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}

	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	logger.Info("listing failed sync events",
		slog.String("owner_id", ownerID.String()),
		slog.Int("limit", limit),
	)

	events, err := eventUseCase.ListFailed(ctx, ownerID, limit)
	if err != nil {
		return fmt.Errorf("failed to list failed events: %w", err)
	}

	if format == "json" {
		return outputEventsJSON(out, events)
	}

	outputEventsText(out, events)
	return nil
}

// outputEventsText outputs events in human-readable text format.
func outputEventsText(out io.Writer, events []*syncDomain.SyncEvent) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No failed events found")
		return
	}

	fmt.Fprintf(out, "Found %d failed event(s):\n", len(events))
	for _, event := range events {
		errorMessage := ""
		if event.ErrorMessage != nil {
			errorMessage = *event.ErrorMessage
		}
		fmt.Fprintf(out, "  %s  type=%s entity=%s attempts=%d/%d error=%q\n",
			event.ID,
			event.EventType,
			event.EntityID,
			event.AttemptCount,
			event.MaxAttempts,
			errorMessage,
		)
	}
}

// outputEventsJSON outputs events in JSON format for machine consumption.
func outputEventsJSON(out io.Writer, events []*syncDomain.SyncEvent) error {
	type failedEvent struct {
		ID           string `json:"id"`
		EventType    string `json:"event_type"`
		EntityID     string `json:"entity_id"`
		AttemptCount int    `json:"attempt_count"`
		MaxAttempts  int    `json:"max_attempts"`
		ErrorMessage string `json:"error_message,omitempty"`
		CreatedAt    string `json:"created_at"`
	}

	result := make([]failedEvent, 0, len(events))
	for _, event := range events {
		item := failedEvent{
			ID:           event.ID.String(),
			EventType:    string(event.EventType),
			EntityID:     event.EntityID.String(),
			AttemptCount: event.AttemptCount,
			MaxAttempts:  event.MaxAttempts,
			CreatedAt:    event.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if event.ErrorMessage != nil {
			item.ErrorMessage = *event.ErrorMessage
		}
		result = append(result, item)
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}
