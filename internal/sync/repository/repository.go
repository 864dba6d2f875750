// Package repository provides data persistence implementations for sync events.
package repository

import (
	"database/sql"
	"encoding/json"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// eventColumns is the canonical column list shared by every driver.
const eventColumns = `id, event_type, entity_id, owner_id, status, attempt_count, max_attempts,
			  priority, is_new_record, error_message, metadata, created_at, last_attempt_at, completed_at`

// marshalMetadata encodes the metadata map as a JSON text column value.
// An empty map is stored as NULL.
func marshalMetadata(metadata map[string]string) (*string, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal event metadata")
	}
	s := string(raw)
	return &s, nil
}

// unmarshalMetadata decodes the JSON text column back into a map.
func unmarshalMetadata(raw sql.NullString) (map[string]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(raw.String), &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal event metadata")
	}
	return metadata, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one event row in eventColumns order. Used by the
// PostgreSQL and SQLite repositories, which both store UUIDs as text.
func scanEvent(row rowScanner) (*syncDomain.SyncEvent, error) {
	var event syncDomain.SyncEvent
	var rawMetadata sql.NullString

	err := row.Scan(
		&event.ID,
		&event.EventType,
		&event.EntityID,
		&event.OwnerID,
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
		return nil, err
	}

	event.Metadata, err = unmarshalMetadata(rawMetadata)
	if err != nil {
		return nil, err
	}

	return &event, nil
}
