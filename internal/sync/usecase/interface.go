// Package usecase implements the sync engine: the durable event queue
// processing loop, retry/backoff policy, bounded-concurrency dispatch, and
// the cleanup sweep.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// EventRepository defines persistence operations for sync events.
// Implementations must support transaction-aware operations via context
// propagation and atomic single-row status transitions.
type EventRepository interface {
	// Create stores a new sync event.
	Create(ctx context.Context, event *syncDomain.SyncEvent) error

	// GetPending retrieves up to limit dispatch-ready events for the owner,
	// ordered by priority descending then creation time ascending. Failed
	// events with retry budget left are included.
	GetPending(ctx context.Context, ownerID uuid.UUID, limit int) ([]*syncDomain.SyncEvent, error)

	// GetLive returns the owner's live event for the (entity, type) pair:
	// pending, processing, or failed with retry budget left. Returns nil
	// when none exists.
	GetLive(
		ctx context.Context,
		ownerID, entityID uuid.UUID,
		eventType syncDomain.EventType,
	) (*syncDomain.SyncEvent, error)

	// MarkProcessing transitions an event to processing status.
	MarkProcessing(ctx context.Context, eventID uuid.UUID) error

	// MarkFailed records a failed attempt: failed status, incremented
	// attempt count, error message, and attempt timestamp.
	MarkFailed(ctx context.Context, eventID uuid.UUID, errorMessage string) error

	// MarkCompleted transitions an event to completed status; fallback for
	// when the post-success delete fails.
	MarkCompleted(ctx context.Context, eventID uuid.UUID) error

	// Delete removes an event.
	Delete(ctx context.Context, eventID uuid.UUID) error

	// GetStale retrieves events pending since before olderThan.
	GetStale(ctx context.Context, ownerID uuid.UUID, olderThan time.Time) ([]*syncDomain.SyncEvent, error)

	// GetFailed retrieves events in failed status for diagnostics.
	GetFailed(ctx context.Context, ownerID uuid.UUID, limit int) ([]*syncDomain.SyncEvent, error)

	// DeleteCompleted removes completed events older than olderThan,
	// returning the number of rows removed.
	DeleteCompleted(ctx context.Context, olderThan time.Time) (int64, error)

	// CountCompleted counts completed events older than olderThan.
	CountCompleted(ctx context.Context, olderThan time.Time) (int64, error)

	// ResetProcessing returns events stuck in processing to pending,
	// returning the number of rows affected.
	ResetProcessing(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// Handler implements the upload/reconciliation logic for one entity type.
// Handlers must be idempotent with respect to "upload already happened":
// the response to a first attempt can be lost and the event retried even
// though the remote side effect succeeded.
type Handler interface {
	// EventType returns the type tag this handler serves.
	EventType() syncDomain.EventType

	// Fetch loads the current local entity state. Returns
	// domain.ErrEntityNotFound when the local record vanished.
	Fetch(ctx context.Context, entityID, ownerID uuid.UUID) (any, error)

	// Upload ships the entity to the backend and reports the tagged outcome.
	Upload(ctx context.Context, entity any) syncDomain.UploadOutcome

	// Reconcile writes the backend-assigned id onto the local record and
	// marks it synced, closing the loop for this entity.
	Reconcile(ctx context.Context, entityID uuid.UUID, remoteID string, ownerID uuid.UUID) error

	// DeleteRemote removes the backend copy for delete operations.
	DeleteRemote(ctx context.Context, remoteID string) error
}

// Engine drives the processing loop and cleanup sweeper for one owner.
type Engine interface {
	// Start begins processing for the owner. Only one owner may be active;
	// a second Start returns ErrEngineRunning until Stop is called.
	Start(ownerID uuid.UUID) error

	// Stop cancels the timers and waits for in-flight handlers to finish.
	// Safe to call when not running.
	Stop()

	// TriggerImmediate requests an out-of-band processing pass without
	// waiting for the next tick. Fire-and-forget.
	TriggerImmediate(ownerID uuid.UUID)

	// TriggerImmediateAndWait runs a processing pass and waits for the
	// resulting batch to complete.
	TriggerImmediateAndWait(ctx context.Context, ownerID uuid.UUID) error
}

// EventUseCase exposes queue operations to producers and operator tooling.
type EventUseCase interface {
	// Enqueue records that an entity needs remote sync and returns the
	// event id. When a live event for the same (entity, type) and operation
	// already exists the call coalesces into it, keeping the queue at one
	// live event per pair.
	Enqueue(ctx context.Context, input *EnqueueInput) (uuid.UUID, error)

	// ListFailed returns events in failed status for diagnostics.
	ListFailed(ctx context.Context, ownerID uuid.UUID, limit int) ([]*syncDomain.SyncEvent, error)

	// ListStale returns events pending longer than the staleness threshold.
	ListStale(ctx context.Context, ownerID uuid.UUID) ([]*syncDomain.SyncEvent, error)

	// CleanupCompleted deletes completed events older than the given age,
	// returning the number removed. With dryRun it only counts.
	CleanupCompleted(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error)
}

// EnqueueInput carries the parameters for a new sync event.
type EnqueueInput struct {
	OwnerID     uuid.UUID
	EventType   syncDomain.EventType
	EntityID    uuid.UUID
	IsNewRecord bool
	Priority    int
	Metadata    map[string]string
}
