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

// PostgreSQLEventRepository implements sync event persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
// Pending fetches take row locks with SKIP LOCKED so a concurrent dispatch
// path never double-claims an event.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL sync event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts a new sync event.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *syncDomain.SyncEvent) error {
	querier := database.GetTx(ctx, p.db)

	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO sync_events (` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

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

// GetPending retrieves up to limit events that are ready for dispatch,
// scoped to the owner. Failed events re-enter the pool while they still
// have retry budget; exhausted ones stay out, visible in failed status.
// Ordered by priority descending, then creation time ascending.
func (p *PostgreSQLEventRepository) GetPending(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = $1
			    AND (status = $2 OR (status = $3 AND attempt_count < max_attempts))
			  ORDER BY priority DESC, created_at ASC
			  LIMIT $4
			  FOR UPDATE SKIP LOCKED`

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
func (p *PostgreSQLEventRepository) GetLive(
	ctx context.Context,
	ownerID, entityID uuid.UUID,
	eventType syncDomain.EventType,
) (*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = $1 AND entity_id = $2 AND event_type = $3
			    AND (status = $4 OR status = $5 OR (status = $6 AND attempt_count < max_attempts))
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
func (p *PostgreSQLEventRepository) MarkProcessing(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_events SET status = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, syncDomain.SyncEventStatusProcessing, eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event processing")
	}
	return nil
}

// MarkFailed records a failed attempt: failed status, incremented attempt
// count, the failure cause, and the attempt timestamp.
func (p *PostgreSQLEventRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, errorMessage string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_events
			  SET status = $1, attempt_count = attempt_count + 1, error_message = $2, last_attempt_at = $3
			  WHERE id = $4`

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

// MarkCompleted transitions an event to completed status. Only used as a
// fallback when the post-success delete fails; the cleanup sweeper reaps
// completed rows.
func (p *PostgreSQLEventRepository) MarkCompleted(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_events SET status = $1, completed_at = $2 WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, syncDomain.SyncEventStatusCompleted, time.Now().UTC(), eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event completed")
	}
	return nil
}

// Delete removes an event, normally immediately after a successful upload.
func (p *PostgreSQLEventRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sync_events WHERE id = $1`

	_, err := querier.ExecContext(ctx, query, eventID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete sync event")
	}
	return nil
}

// GetStale retrieves events that have been pending since before olderThan.
func (p *PostgreSQLEventRepository) GetStale(
	ctx context.Context,
	ownerID uuid.UUID,
	olderThan time.Time,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = $1 AND status = $2 AND created_at < $3
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, ownerID, syncDomain.SyncEventStatusPending, olderThan)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get stale sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectEvents(rows)
}

// GetFailed retrieves events in failed status for diagnostics, newest first.
func (p *PostgreSQLEventRepository) GetFailed(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = $1 AND status = $2
			  ORDER BY last_attempt_at DESC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, ownerID, syncDomain.SyncEventStatusFailed, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get failed sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectEvents(rows)
}

// DeleteCompleted removes completed events older than olderThan. This is a
// maintenance query and deliberately not owner-scoped.
func (p *PostgreSQLEventRepository) DeleteCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sync_events WHERE status = $1 AND completed_at < $2`

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
func (p *PostgreSQLEventRepository) CountCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM sync_events WHERE status = $1 AND completed_at < $2`

	var count int64
	err := querier.QueryRowContext(ctx, query, syncDomain.SyncEventStatusCompleted, olderThan).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count completed sync events")
	}
	return count, nil
}

// ResetProcessing returns events stuck in processing status to pending.
// Called on engine start so events claimed by a crashed run are not lost.
func (p *PostgreSQLEventRepository) ResetProcessing(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sync_events SET status = $1 WHERE owner_id = $2 AND status = $3`

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

// collectEvents drains rows into events, surfacing iteration errors.
func collectEvents(rows *sql.Rows) ([]*syncDomain.SyncEvent, error) {
	var events []*syncDomain.SyncEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan sync event")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sync events")
	}

	return events, nil
}
