package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/database"
	apperrors "github.com/fitsync/fitsync/internal/errors"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// MySQLEventRepository implements sync event persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL sync event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts a new sync event using BINARY(16) for UUIDs.
func (m *MySQLEventRepository) Create(ctx context.Context, event *syncDomain.SyncEvent) error {
	querier := database.GetTx(ctx, m.db)

	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}
	entityID, err := event.EntityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal entity id")
	}
	ownerID, err := event.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `INSERT INTO sync_events (` + eventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		event.EventType,
		entityID,
		ownerID,
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

// GetPending retrieves up to limit dispatch-ready events for the owner.
func (m *MySQLEventRepository) GetPending(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ?
			    AND (status = ? OR (status = ? AND attempt_count < max_attempts))
			  ORDER BY priority DESC, created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(
		ctx,
		query,
		owner,
		syncDomain.SyncEventStatusPending,
		syncDomain.SyncEventStatusFailed,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectMySQLEvents(rows)
}

// GetLive returns the owner's live event for the (entity, type) pair, or
// nil when none exists. Backs enqueue coalescing.
func (m *MySQLEventRepository) GetLive(
	ctx context.Context,
	ownerID, entityID uuid.UUID,
	eventType syncDomain.EventType,
) (*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}
	entity, err := entityID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal entity id")
	}

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ? AND entity_id = ? AND event_type = ?
			    AND (status = ? OR status = ? OR (status = ? AND attempt_count < max_attempts))
			  ORDER BY created_at ASC
			  LIMIT 1`

	rows, err := querier.QueryContext(
		ctx,
		query,
		owner,
		entity,
		eventType,
		syncDomain.SyncEventStatusPending,
		syncDomain.SyncEventStatusProcessing,
		syncDomain.SyncEventStatusFailed,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get live sync event")
	}
	defer rows.Close() //nolint:errcheck

	events, err := collectMySQLEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

// MarkProcessing transitions an event to processing status.
func (m *MySQLEventRepository) MarkProcessing(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := eventID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	query := `UPDATE sync_events SET status = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, syncDomain.SyncEventStatusProcessing, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event processing")
	}
	return nil
}

// MarkFailed records a failed attempt with its cause and timestamp.
func (m *MySQLEventRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, errorMessage string) error {
	querier := database.GetTx(ctx, m.db)

	id, err := eventID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	query := `UPDATE sync_events
			  SET status = ?, attempt_count = attempt_count + 1, error_message = ?, last_attempt_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, syncDomain.SyncEventStatusFailed, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event failed")
	}
	return nil
}

// MarkCompleted transitions an event to completed status.
func (m *MySQLEventRepository) MarkCompleted(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := eventID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	query := `UPDATE sync_events SET status = ?, completed_at = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, syncDomain.SyncEventStatusCompleted, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark sync event completed")
	}
	return nil
}

// Delete removes an event.
func (m *MySQLEventRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := eventID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	query := `DELETE FROM sync_events WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete sync event")
	}
	return nil
}

// GetStale retrieves events pending since before olderThan.
func (m *MySQLEventRepository) GetStale(
	ctx context.Context,
	ownerID uuid.UUID,
	olderThan time.Time,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ? AND status = ? AND created_at < ?
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, owner, syncDomain.SyncEventStatusPending, olderThan)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get stale sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectMySQLEvents(rows)
}

// GetFailed retrieves events in failed status, newest attempt first.
func (m *MySQLEventRepository) GetFailed(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT ` + eventColumns + `
			  FROM sync_events
			  WHERE owner_id = ? AND status = ?
			  ORDER BY last_attempt_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, owner, syncDomain.SyncEventStatusFailed, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get failed sync events")
	}
	defer rows.Close() //nolint:errcheck

	return collectMySQLEvents(rows)
}

// DeleteCompleted removes completed events older than olderThan.
func (m *MySQLEventRepository) DeleteCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLEventRepository) CountCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM sync_events WHERE status = ? AND completed_at < ?`

	var count int64
	err := querier.QueryRowContext(ctx, query, syncDomain.SyncEventStatusCompleted, olderThan).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count completed sync events")
	}
	return count, nil
}

// ResetProcessing returns events stuck in processing status to pending.
func (m *MySQLEventRepository) ResetProcessing(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := ownerID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `UPDATE sync_events SET status = ? WHERE owner_id = ? AND status = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		syncDomain.SyncEventStatusPending,
		owner,
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

// collectMySQLEvents drains rows, decoding BINARY(16) UUID columns.
func collectMySQLEvents(rows *sql.Rows) ([]*syncDomain.SyncEvent, error) {
	var events []*syncDomain.SyncEvent
	for rows.Next() {
		var event syncDomain.SyncEvent
		var id, entityID, ownerID []byte
		var rawMetadata sql.NullString

		err := rows.Scan(
			&id,
			&event.EventType,
			&entityID,
			&ownerID,
			&event.Status,
			&event.AttemptCount,
			&event.MaxAttempts,
			&event.Priority,
			&event.IsNewRecord,
			&event.ErrorMessage,
			&rawMetadata,
			&event.CreatedAt,
			&event.LastAttemptAt,
			&event.CompletedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan sync event")
		}

		if event.ID, err = uuid.FromBytes(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal event id")
		}
		if event.EntityID, err = uuid.FromBytes(entityID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal entity id")
		}
		if event.OwnerID, err = uuid.FromBytes(ownerID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
		}

		if event.Metadata, err = unmarshalMetadata(rawMetadata); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sync events")
	}

	return events, nil
}
