// Package usecase implements the local-first write path: every record
// mutation persists locally and enqueues a sync event in the same
// transaction, so the queue can never miss a local change.
package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
)

// RecordRepository defines persistence operations for fitness records.
type RecordRepository interface {
	// Create inserts a new fitness record.
	Create(ctx context.Context, record *fitnessDomain.Record) error

	// Update replaces the record's payload and clears its synced state.
	Update(ctx context.Context, record *fitnessDomain.Record) error

	// GetByID retrieves a record scoped to its owner.
	GetByID(ctx context.Context, recordID, ownerID uuid.UUID) (*fitnessDomain.Record, error)

	// ListByType retrieves the owner's records of one type, newest first.
	ListByType(
		ctx context.Context,
		ownerID uuid.UUID,
		recordType fitnessDomain.RecordType,
		limit int,
	) ([]*fitnessDomain.Record, error)

	// MarkSynced stamps the backend-assigned id onto the record.
	MarkSynced(ctx context.Context, recordID uuid.UUID, remoteID string, ownerID uuid.UUID) error

	// Delete removes a record scoped to its owner.
	Delete(ctx context.Context, recordID, ownerID uuid.UUID) error
}

// RecordUseCase exposes the tracked-data write and read paths.
type RecordUseCase interface {
	// SaveRecord creates or updates a record and enqueues its sync event
	// atomically. A nil RecordID creates; otherwise updates.
	SaveRecord(ctx context.Context, input *SaveRecordInput) (*fitnessDomain.Record, error)

	// GetRecord retrieves a record scoped to its owner.
	GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (*fitnessDomain.Record, error)

	// ListRecords retrieves the owner's records of one type, newest first.
	ListRecords(
		ctx context.Context,
		ownerID uuid.UUID,
		recordType fitnessDomain.RecordType,
		limit int,
	) ([]*fitnessDomain.Record, error)

	// DeleteRecord removes the local record and enqueues the remote delete
	// atomically. The local deletion is authoritative.
	DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error
}

// SaveRecordInput carries the parameters for a record write.
type SaveRecordInput struct {
	OwnerID    uuid.UUID
	RecordID   *uuid.UUID
	RecordType fitnessDomain.RecordType
	Payload    json.RawMessage
	Priority   int
}
