package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/database"
	apperrors "github.com/fitsync/fitsync/internal/errors"
	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
	"github.com/fitsync/fitsync/internal/validation"
)

// recordUseCase implements RecordUseCase. Writes go through the transaction
// manager so the record mutation and its sync event commit or roll back
// together.
type recordUseCase struct {
	txManager database.TxManager
	repo      RecordRepository
	events    syncUseCase.EventUseCase
	logger    *slog.Logger
}

// NewRecordUseCase creates a new RecordUseCase.
func NewRecordUseCase(
	txManager database.TxManager,
	repo RecordRepository,
	events syncUseCase.EventUseCase,
	logger *slog.Logger,
) RecordUseCase {
	return &recordUseCase{
		txManager: txManager,
		repo:      repo,
		events:    events,
		logger:    logger,
	}
}

// SaveRecord creates or updates a record and enqueues its sync event in the
// same transaction.
func (u *recordUseCase) SaveRecord(ctx context.Context, input *SaveRecordInput) (*fitnessDomain.Record, error) {
	if input.OwnerID == uuid.Nil {
		return nil, syncDomain.ErrUnauthenticated
	}
	if !fitnessDomain.IsValidRecordType(string(input.RecordType)) {
		return nil, fitnessDomain.ErrUnknownRecordType
	}
	if err := validatePayload(input.RecordType, input.Payload); err != nil {
		return nil, err
	}

	isNewRecord := input.RecordID == nil

	var record *fitnessDomain.Record
	if isNewRecord {
		var err error
		record, err = fitnessDomain.NewRecord(input.OwnerID, input.RecordType, json.RawMessage(input.Payload))
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := u.repo.GetByID(ctx, *input.RecordID, input.OwnerID)
		if err != nil {
			return nil, err
		}
		if existing.RecordType != input.RecordType {
			return nil, fitnessDomain.ErrRecordTypeMismatch
		}
		existing.Payload = input.Payload
		existing.SyncedAt = nil
		record = existing
	}

	err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if isNewRecord {
			if err := u.repo.Create(txCtx, record); err != nil {
				return err
			}
		} else {
			if err := u.repo.Update(txCtx, record); err != nil {
				return err
			}
		}

		_, err := u.events.Enqueue(txCtx, &syncUseCase.EnqueueInput{
			OwnerID:     input.OwnerID,
			EventType:   syncDomain.EventType(input.RecordType),
			EntityID:    record.ID,
			IsNewRecord: isNewRecord,
			Priority:    input.Priority,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	u.logger.Debug("fitness record saved",
		slog.String("record_id", record.ID.String()),
		slog.String("record_type", string(record.RecordType)),
		slog.Bool("is_new_record", isNewRecord),
	)
	return record, nil
}

// GetRecord retrieves a record scoped to its owner.
func (u *recordUseCase) GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (*fitnessDomain.Record, error) {
	if ownerID == uuid.Nil {
		return nil, syncDomain.ErrUnauthenticated
	}
	return u.repo.GetByID(ctx, recordID, ownerID)
}

// ListRecords retrieves the owner's records of one type, newest first.
func (u *recordUseCase) ListRecords(
	ctx context.Context,
	ownerID uuid.UUID,
	recordType fitnessDomain.RecordType,
	limit int,
) ([]*fitnessDomain.Record, error) {
	if ownerID == uuid.Nil {
		return nil, syncDomain.ErrUnauthenticated
	}
	if !fitnessDomain.IsValidRecordType(string(recordType)) {
		return nil, fitnessDomain.ErrUnknownRecordType
	}
	if limit <= 0 {
		limit = 50
	}
	return u.repo.ListByType(ctx, ownerID, recordType, limit)
}

// DeleteRecord removes the local record and enqueues the remote delete in
// the same transaction. The local deletion takes effect regardless of what
// later happens on the backend.
func (u *recordUseCase) DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return syncDomain.ErrUnauthenticated
	}

	record, err := u.repo.GetByID(ctx, recordID, ownerID)
	if err != nil {
		return err
	}

	metadata := map[string]string{
		syncDomain.MetadataKeyOperation: syncDomain.OperationDelete,
	}
	if record.RemoteID != nil {
		metadata[syncDomain.MetadataKeyRemoteID] = *record.RemoteID
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.repo.Delete(txCtx, recordID, ownerID); err != nil {
			return err
		}

		_, err := u.events.Enqueue(txCtx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: syncDomain.EventType(record.RecordType),
			EntityID:  recordID,
			Metadata:  metadata,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.logger.Debug("fitness record deleted",
		slog.String("record_id", recordID.String()),
		slog.String("record_type", string(record.RecordType)),
	)
	return nil
}

// validatePayload decodes the raw payload into its typed form and runs the
// domain validation rules.
func validatePayload(recordType fitnessDomain.RecordType, payload json.RawMessage) error {
	if len(payload) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "payload is required")
	}

	typed, err := fitnessDomain.NewPayload(recordType)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, typed); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "malformed payload: "+err.Error())
	}
	return validation.WrapValidationError(typed.Validate())
}
