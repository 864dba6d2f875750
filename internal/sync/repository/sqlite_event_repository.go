package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/database"
	apperrors "github.com/fitsync/fitsync/internal/errors"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// SQLiteEventRepository implements sync event persistence for SQLite, the
// on-device local-first store. UUIDs are stored as text. SQLite has no
// SKIP LOCKED; single-writer access is serialized by the engine supervisor
// and the driver's busy timeout.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLite sync event repository.
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

// Create inserts a new sync event.
func (s *SQLiteEventRepository) Create(ctx context.Context, event *syncDomain.SyncEvent) error {
	querier := database.GetTx(ctx, s.db)

	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO sync_events (` + eventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.EventType,
		event.EntityID,
		event.OwnerID,
		event.Status,
		event.AttemptCount,
		event.MaxAttempts,
		event.Priority,
		event.IsNewRecord,
		event.ErrorMessage,
		metadata,
		event.CreatedAt,
		event.LastAttemptAt,
		event.CompletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sync event")
	}
	return nil
}

// GetPending retrieves up to limit dispatch-ready events for the owner,
// priority descending then creation time ascending. Failed events with
// retry budget left re-enter the pool.
func (s *SQLiteEventRepository) GetPending(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ?
			    AND (status = ? OR (status = ? AND attempt_count < max_attempts))
			  ORDER BY priority DESC, created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(
		ctx,
		query,
		ownerID,
		syncDomain.SyncEventStatusPending,
		syncDomain.SyncEventStatusFailed,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectEvents(rows)
}

// GetLive returns the owner's live event for the (entity, type) pair, or
// nil when none exists. Backs enqueue coalescing.
func (s *SQLiteEventRepository) GetLive(
	ctx context.Context,
	ownerID, entityID uuid.UUID,
	eventType syncDomain.EventType,
) (*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ? AND entity_id = ? AND event_type = ?
			    AND (status = ? OR status = ? OR (status = ? AND attempt_count < max_attempts))
			  ORDER BY created_at ASC
			  LIMIT 1`

	event, err := scanEvent(querier.QueryRowContext(
		ctx,
		query,
		ownerID,
		entityID,
		eventType,
		syncDomain.SyncEventStatusPending,
		syncDomain.SyncEventStatusProcessing,
		syncDomain.SyncEventStatusFailed,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get live sync event")
	}
	return event, nil
}

// MarkProcessing transitions an event to processing status.
func (s *SQLiteEventRepository) MarkProcessing(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE sync_events SET status = ? WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, syncDomain.SyncEventStatusProcessing, eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event processing")
	}
	return nil
}

// MarkFailed records a failed attempt with its cause and timestamp.
func (s *SQLiteEventRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, errorMessage string) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE sync_events
			  SET status = ?, attempt_count = attempt_count + 1, error_message = ?, last_attempt_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.SyncEventStatusFailed,
		errorMessage,
		time.Now().UTC(),
		eventID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event failed")
	}
	return nil
}

// MarkCompleted transitions an event to completed status for the sweeper
// to reap when the immediate delete failed.
func (s *SQLiteEventRepository) MarkCompleted(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE sync_events SET status = ?, completed_at = ? WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, syncDomain.SyncEventStatusCompleted, time.Now().UTC(), eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event completed")
	}
	return nil
}

// Delete removes an event.
func (s *SQLiteEventRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, s.db)

	query := `DELETE FROM sync_events WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete sync event")
	}
	return nil
}

// GetStale retrieves events pending since before olderThan.
func (s *SQLiteEventRepository) GetStale(
	ctx context.Context,
	ownerID uuid.UUID,
	olderThan time.Time,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ? AND status = ? AND created_at < ?
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, ownerID, syncDomain.SyncEventStatusPending, olderThan)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get stale sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectEvents(rows)
}

// GetFailed retrieves events in failed status, newest attempt first.
func (s *SQLiteEventRepository) GetFailed(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ? AND status = ?
			  ORDER BY last_attempt_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, ownerID, syncDomain.SyncEventStatusFailed, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get failed sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectEvents(rows)
}

// DeleteCompleted removes completed events older than olderThan.
func (s *SQLiteEventRepository) DeleteCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	query := `DELETE FROM sync_events WHERE status = ? AND completed_at < ?`

	result, err := querier.ExecContext(ctx, query, syncDomain.SyncEventStatusCompleted, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete completed sync events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted sync events")
	}
	return count, nil
}

// CountCompleted counts completed events older than olderThan without
// touching them; backs the cleanup dry-run.
func (s *SQLiteEventRepository) CountCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT COUNT(*) FROM sync_events WHERE status = ? AND completed_at < ?`

	var count int64
	err := querier.QueryRowContext(ctx, query, syncDomain.SyncEventStatusCompleted, olderThan).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count completed sync events")
	}
	return count, nil
}

// ResetProcessing returns events stuck in processing status to pending.
func (s *SQLiteEventRepository) ResetProcessing(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE sync_events SET status = ? WHERE owner_id = ? AND status = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.SyncEventStatusPending,
		ownerID,
		syncDomain.SyncEventStatusProcessing,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to reset processing sync events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count reset sync events")
	}
	return count, nil
}
