// Package repository implements fitness record persistence for the
// on-device SQLite store.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/database"
	apperrors "github.com/fitsync/fitsync/internal/errors"
	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
)

const recordColumns = `id, owner_id, record_type, payload, remote_id, synced_at, created_at, updated_at`

// SQLiteRecordRepository implements fitness record persistence for SQLite.
// Records are the local source of truth; the sync engine only ever updates
// remote_id and synced_at.
type SQLiteRecordRepository struct {
	db *sql.DB
}

// NewSQLiteRecordRepository creates a new SQLite fitness record repository.
func NewSQLiteRecordRepository(db *sql.DB) *SQLiteRecordRepository {
	return &SQLiteRecordRepository{db: db}
}

// Create inserts a new fitness record.
func (s *SQLiteRecordRepository) Create(ctx context.Context, record *fitnessDomain.Record) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO fitness_records (` + recordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.OwnerID,
		record.RecordType,
		string(record.Payload),
		record.RemoteID,
		record.SyncedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create fitness record")
	}
	return nil
}

// Update replaces the record's payload and clears its synced state so the
// next upload ships the fresh content.
func (s *SQLiteRecordRepository) Update(ctx context.Context, record *fitnessDomain.Record) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE fitness_records
			  SET payload = ?, synced_at = NULL, updated_at = ?
			  WHERE id = ? AND owner_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(record.Payload),
		time.Now().UTC(),
		record.ID,
		record.OwnerID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update fitness record")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check updated fitness record")
	}
	if count == 0 {
		return fitnessDomain.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a record scoped to its owner.
func (s *SQLiteRecordRepository) GetByID(
	ctx context.Context,
	recordID, ownerID uuid.UUID,
) (*fitnessDomain.Record, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + recordColumns + `
			  FROM fitness_records
			  WHERE id = ? AND owner_id = ?`

	row := querier.QueryRowContext(ctx, query, recordID, ownerID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fitnessDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get fitness record")
	}
	return record, nil
}

// ListByType retrieves the owner's records of one type, newest first.
func (s *SQLiteRecordRepository) ListByType(
	ctx context.Context,
	ownerID uuid.UUID,
	recordType fitnessDomain.RecordType,
	limit int,
) ([]*fitnessDomain.Record, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + recordColumns + `
			  FROM fitness_records
			  WHERE owner_id = ? AND record_type = ?
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, ownerID, recordType, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list fitness records")
	}
	defer rows.Close() //nolint:errcheck

	var records []*fitnessDomain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan fitness record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate fitness records")
	}
	return records, nil
}

// MarkSynced stamps the backend-assigned id and acknowledgment time onto
// the record, closing the sync loop for it.
func (s *SQLiteRecordRepository) MarkSynced(
	ctx context.Context,
	recordID uuid.UUID,
	remoteID string,
	ownerID uuid.UUID,
) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE fitness_records
			  SET remote_id = ?, synced_at = ?
			  WHERE id = ? AND owner_id = ?`

	result, err := querier.ExecContext(ctx, query, remoteID, time.Now().UTC(), recordID, ownerID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark fitness record synced")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check synced fitness record")
	}
	if count == 0 {
		return fitnessDomain.ErrRecordNotFound
	}
	return nil
}

// Delete removes a record scoped to its owner.
func (s *SQLiteRecordRepository) Delete(ctx context.Context, recordID, ownerID uuid.UUID) error {
	querier := database.GetTx(ctx, s.db)

	query := `DELETE FROM fitness_records WHERE id = ? AND owner_id = ?`

	result, err := querier.ExecContext(ctx, query, recordID, ownerID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete fitness record")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check deleted fitness record")
	}
	if count == 0 {
		return fitnessDomain.ErrRecordNotFound
	}
	return nil
}

// recordScanner abstracts *sql.Row and *sql.Rows for scanRecord.
type recordScanner interface {
	Scan(dest ...any) error
}

func scanRecord(scanner recordScanner) (*fitnessDomain.Record, error) {
	var record fitnessDomain.Record
	var payload string

	err := scanner.Scan(
		&record.ID,
		&record.OwnerID,
		&record.RecordType,
		&payload,
		&record.RemoteID,
		&record.SyncedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Payload = json.RawMessage(payload)
	return &record, nil
}
