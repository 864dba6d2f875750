package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	"github.com/fitsync/fitsync/internal/metrics"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// EventUseCaseConfig holds queue-facing configuration.
type EventUseCaseConfig struct {
	// MaxAttempts is the retry budget stamped onto new events.
	MaxAttempts int
	// StaleThreshold is the pending age after which ListStale reports an event.
	StaleThreshold time.Duration
}

// eventUseCase implements EventUseCase over the event repository.
type eventUseCase struct {
	config  EventUseCaseConfig
	repo    EventRepository
	logger  *slog.Logger
	metrics metrics.SyncMetrics
}

// NewEventUseCase creates a new EventUseCase. syncMetrics may be nil.
func NewEventUseCase(
	config EventUseCaseConfig,
	repo EventRepository,
	logger *slog.Logger,
	syncMetrics metrics.SyncMetrics,
) EventUseCase {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = syncDomain.DefaultMaxAttempts
	}
	if config.StaleThreshold <= 0 {
		config.StaleThreshold = 5 * time.Minute
	}
	return &eventUseCase{
		config:  config,
		repo:    repo,
		logger:  logger,
		metrics: syncMetrics,
	}
}

// Enqueue records that an entity needs remote sync. Called by local
// mutation paths immediately after the local write.
func (u *eventUseCase) Enqueue(ctx context.Context, input *EnqueueInput) (uuid.UUID, error) {
	if input.OwnerID == uuid.Nil {
		return uuid.Nil, syncDomain.ErrUnauthenticated
	}
	if !syncDomain.IsValidEventType(string(input.EventType)) {
		return uuid.Nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown event type %q", input.EventType)
	}
	if input.EntityID == uuid.Nil {
		return uuid.Nil, apperrors.Wrap(apperrors.ErrInvalidInput, "entity id is required")
	}

	// One live event per (entity, type): a matching live event absorbs the
	// enqueue, and a delete replaces a queued upload for a record that no
	// longer exists locally.
	live, err := u.repo.GetLive(ctx, input.OwnerID, input.EntityID, input.EventType)
	if err != nil {
		return uuid.Nil, err
	}
	if live != nil {
		inputIsDelete := input.Metadata[syncDomain.MetadataKeyOperation] == syncDomain.OperationDelete
		if live.IsDeleteOperation() == inputIsDelete {
			u.logger.Debug("sync event coalesced",
				slog.String("event_id", live.ID.String()),
				slog.String("event_type", string(live.EventType)),
				slog.String("entity_id", live.EntityID.String()),
			)
			return live.ID, nil
		}
		if inputIsDelete {
			if err := u.repo.Delete(ctx, live.ID); err != nil {
				return uuid.Nil, err
			}
		}
	}

	event := syncDomain.NewSyncEvent(
		input.OwnerID,
		input.EventType,
		input.EntityID,
		input.IsNewRecord,
		input.Priority,
		input.Metadata,
	)
	event.MaxAttempts = u.config.MaxAttempts

	if err := u.repo.Create(ctx, event); err != nil {
		return uuid.Nil, err
	}

	u.logger.Debug("sync event enqueued",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("entity_id", event.EntityID.String()),
	)
	if u.metrics != nil {
		u.metrics.RecordEnqueued(ctx, string(event.EventType))
	}

	return event.ID, nil
}

// ListFailed returns events in failed status, newest attempt first.
func (u *eventUseCase) ListFailed(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	if ownerID == uuid.Nil {
		return nil, syncDomain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = 50
	}
	return u.repo.GetFailed(ctx, ownerID, limit)
}

// ListStale returns events pending longer than the staleness threshold.
func (u *eventUseCase) ListStale(ctx context.Context, ownerID uuid.UUID) ([]*syncDomain.SyncEvent, error) {
	if ownerID == uuid.Nil {
		return nil, syncDomain.ErrUnauthenticated
	}
	cutoff := time.Now().UTC().Add(-u.config.StaleThreshold)
	return u.repo.GetStale(ctx, ownerID, cutoff)
}

// CleanupCompleted deletes completed events older than the given age. With
// dryRun it reports how many would be removed without touching them.
func (u *eventUseCase) CleanupCompleted(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error) {
	if olderThan < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "olderThan must not be negative")
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	if dryRun {
		return u.repo.CountCompleted(ctx, cutoff)
	}
	return u.repo.DeleteCompleted(ctx, cutoff)
}
