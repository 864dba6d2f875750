// Package remote implements the backend side of the sync loop: a
// PostgreSQL-backed store the engine uploads fitness records to. The
// handlers only see the RemoteUploader contract, so swapping the backend
// transport never touches the engine.
package remote

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// PostgresUploader ships fitness records into a remote PostgreSQL store.
// A unique (owner_id, record_type, local_id) constraint makes the first
// upload idempotent: a retried insert whose original response was lost
// surfaces as a duplicate and is reported as already done.
type PostgresUploader struct {
	db *sql.DB
}

// NewPostgresUploader creates a new PostgreSQL-backed uploader.
func NewPostgresUploader(db *sql.DB) *PostgresUploader {
	return &PostgresUploader{db: db}
}

// Upload ships the record. Records already acknowledged by the backend are
// updated in place; fresh records are inserted, with duplicate conflicts
// resolved to the existing remote id.
func (p *PostgresUploader) Upload(ctx context.Context, record *fitnessDomain.Record) syncDomain.UploadOutcome {
	now := time.Now().UTC()

	if record.RemoteID != nil {
		query := `UPDATE remote_records SET payload = $1, updated_at = $2 WHERE id = $3`

		result, err := p.db.ExecContext(ctx, query, string(record.Payload), now, *record.RemoteID)
		if err != nil {
			return syncDomain.Retryable(apperrors.Wrap(err, "failed to update remote record"))
		}
		count, err := result.RowsAffected()
		if err != nil {
			return syncDomain.Retryable(apperrors.Wrap(err, "failed to check updated remote record"))
		}
		if count > 0 {
			return syncDomain.Success(*record.RemoteID)
		}
		// The remote copy vanished; fall through and insert a fresh one.
	}

	remoteID := uuid.Must(uuid.NewV7()).String()

	query := `INSERT INTO remote_records (id, owner_id, record_type, local_id, payload, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := p.db.ExecContext(
		ctx,
		query,
		remoteID,
		record.OwnerID,
		record.RecordType,
		record.ID,
		string(record.Payload),
		now,
		now,
	)
	if err == nil {
		return syncDomain.Success(remoteID)
	}
	if !isUniqueViolation(err) {
		return syncDomain.Retryable(apperrors.Wrap(err, "failed to insert remote record"))
	}

	// Duplicate: a previous attempt landed but its response was lost.
	existingID, lookupErr := p.lookupRemoteID(ctx, record)
	if lookupErr != nil {
		return syncDomain.Retryable(lookupErr)
	}
	return syncDomain.AlreadyDone(existingID)
}

// Delete removes the backend copy. Deleting an id the backend no longer
// has is a no-op, keeping the operation idempotent.
func (p *PostgresUploader) Delete(ctx context.Context, remoteID string) error {
	query := `DELETE FROM remote_records WHERE id = $1`

	if _, err := p.db.ExecContext(ctx, query, remoteID); err != nil {
		return apperrors.Wrap(err, "failed to delete remote record")
	}
	return nil
}

func (p *PostgresUploader) lookupRemoteID(ctx context.Context, record *fitnessDomain.Record) (string, error) {
	query := `SELECT id FROM remote_records WHERE owner_id = $1 AND record_type = $2 AND local_id = $3`

	var remoteID string
	err := p.db.QueryRowContext(ctx, query, record.OwnerID, record.RecordType, record.ID).Scan(&remoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.Wrap(err, "duplicate remote record disappeared")
		}
		return "", apperrors.Wrap(err, "failed to look up remote record id")
	}
	return remoteID, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
