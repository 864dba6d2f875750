// Package handlers wires the closed set of fitness record types into the
// sync engine's handler registry. Each handler re-fetches the record at
// processing time, validates its payload, and delegates the wire transfer
// to a RemoteUploader.
package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
	"github.com/fitsync/fitsync/internal/validation"
)

// RecordStore loads and reconciles local fitness records.
type RecordStore interface {
	// GetByID retrieves a record scoped to its owner.
	GetByID(ctx context.Context, recordID, ownerID uuid.UUID) (*fitnessDomain.Record, error)

	// MarkSynced stamps the backend-assigned id and acknowledgment time.
	MarkSynced(ctx context.Context, recordID uuid.UUID, remoteID string, ownerID uuid.UUID) error
}

// RemoteUploader ships fitness records to the backend and removes them.
// Implementations decide the transport; handlers only consume the tagged
// outcome.
type RemoteUploader interface {
	// Upload ships the record and reports the tagged outcome.
	Upload(ctx context.Context, record *fitnessDomain.Record) syncDomain.UploadOutcome

	// Delete removes the backend copy. Must be idempotent.
	Delete(ctx context.Context, remoteID string) error
}

// validatable is satisfied by every typed record payload.
type validatable interface {
	Validate() error
}

// recordHandler implements the sync handler contract for one record type.
type recordHandler struct {
	eventType  syncDomain.EventType
	recordType fitnessDomain.RecordType
	store      RecordStore
	uploader   RemoteUploader
	newPayload func() validatable
}

func (h *recordHandler) EventType() syncDomain.EventType {
	return h.eventType
}

// Fetch loads the current local record so the upload never ships stale
// state.
func (h *recordHandler) Fetch(ctx context.Context, entityID, ownerID uuid.UUID) (any, error) {
	record, err := h.store.GetByID(ctx, entityID, ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, syncDomain.ErrEntityNotFound
		}
		return nil, err
	}
	if record.RecordType != h.recordType {
		return nil, fitnessDomain.ErrRecordTypeMismatch
	}
	return record, nil
}

// Upload decodes and validates the typed payload, then hands the record to
// the uploader. Payloads that cannot validate will never succeed, so they
// report a permanent outcome.
func (h *recordHandler) Upload(ctx context.Context, entity any) syncDomain.UploadOutcome {
	record, ok := entity.(*fitnessDomain.Record)
	if !ok {
		return syncDomain.Permanent(apperrors.New("entity is not a fitness record"))
	}

	payload := h.newPayload()
	if err := record.DecodePayload(payload); err != nil {
		return syncDomain.Permanent(err)
	}
	if err := payload.Validate(); err != nil {
		return syncDomain.Permanent(validation.WrapValidationError(err))
	}

	return h.uploader.Upload(ctx, record)
}

// Reconcile writes the backend-assigned id onto the local record.
func (h *recordHandler) Reconcile(ctx context.Context, entityID uuid.UUID, remoteID string, ownerID uuid.UUID) error {
	return h.store.MarkSynced(ctx, entityID, remoteID, ownerID)
}

// DeleteRemote removes the backend copy for delete operations.
func (h *recordHandler) DeleteRemote(ctx context.Context, remoteID string) error {
	return h.uploader.Delete(ctx, remoteID)
}

// NewProgressMetricHandler creates the handler for progress metrics.
func NewProgressMetricHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeProgressMetric,
		recordType: fitnessDomain.RecordTypeProgressMetric,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.ProgressMetric{} },
	}
}

// NewBodyMeasurementHandler creates the handler for body measurements.
func NewBodyMeasurementHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeBodyMeasurement,
		recordType: fitnessDomain.RecordTypeBodyMeasurement,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.BodyMeasurement{} },
	}
}

// NewActivitySnapshotHandler creates the handler for daily activity
// snapshots.
func NewActivitySnapshotHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeActivitySnapshot,
		recordType: fitnessDomain.RecordTypeActivitySnapshot,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.ActivitySnapshot{} },
	}
}

// NewSleepSessionHandler creates the handler for sleep sessions.
func NewSleepSessionHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeSleepSession,
		recordType: fitnessDomain.RecordTypeSleepSession,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.SleepSession{} },
	}
}

// NewMealLogHandler creates the handler for meal logs.
func NewMealLogHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeMealLog,
		recordType: fitnessDomain.RecordTypeMealLog,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.MealLog{} },
	}
}

// NewWorkoutHandler creates the handler for workouts.
func NewWorkoutHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeWorkout,
		recordType: fitnessDomain.RecordTypeWorkout,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.Workout{} },
	}
}

// NewWorkoutTemplateHandler creates the handler for workout templates.
func NewWorkoutTemplateHandler(store RecordStore, uploader RemoteUploader) syncUseCase.Handler {
	return &recordHandler{
		eventType:  syncDomain.EventTypeWorkoutTemplate,
		recordType: fitnessDomain.RecordTypeWorkoutTemplate,
		store:      store,
		uploader:   uploader,
		newPayload: func() validatable { return &fitnessDomain.WorkoutTemplate{} },
	}
}

// RegisterAll wires every record type handler into the registry.
func RegisterAll(registry *syncUseCase.Registry, store RecordStore, uploader RemoteUploader) {
	registry.Register(NewProgressMetricHandler(store, uploader))
	registry.Register(NewBodyMeasurementHandler(store, uploader))
	registry.Register(NewActivitySnapshotHandler(store, uploader))
	registry.Register(NewSleepSessionHandler(store, uploader))
	registry.Register(NewMealLogHandler(store, uploader))
	registry.Register(NewWorkoutHandler(store, uploader))
	registry.Register(NewWorkoutTemplateHandler(store, uploader))
}
