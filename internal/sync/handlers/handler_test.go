package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	"github.com/fitsync/fitsync/internal/sync/handlers"
	"github.com/fitsync/fitsync/internal/sync/handlers/mocks"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
)

func newWorkoutRecord(t *testing.T, ownerID uuid.UUID) *fitnessDomain.Record {
	t.Helper()
	record, err := fitnessDomain.NewRecord(ownerID, fitnessDomain.RecordTypeWorkout, &fitnessDomain.Workout{
		Name:            "push day",
		StartedAt:       time.Now().UTC().Add(-time.Hour),
		DurationSeconds: 3600,
		Sets: []fitnessDomain.ExerciseSet{
			{Exercise: "bench press", Reps: 8, WeightKg: 80},
		},
	})
	require.NoError(t, err)
	return record
}

// TestRecordHandler_Fetch tests the Fetch method of recordHandler.
func TestRecordHandler_Fetch(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		record := newWorkoutRecord(t, ownerID)
		mockStore.On("GetByID", mock.Anything, record.ID, ownerID).Return(record, nil).Once()

		entity, err := handler.Fetch(ctx, record.ID, ownerID)

		assert.NoError(t, err)
		assert.Same(t, record, entity)
		mockStore.AssertExpectations(t)
	})

	t.Run("Error_RecordVanished", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		recordID := uuid.Must(uuid.NewV7())
		mockStore.On("GetByID", mock.Anything, recordID, ownerID).
			Return(nil, fitnessDomain.ErrRecordNotFound).
			Once()

		_, err := handler.Fetch(ctx, recordID, ownerID)

		assert.ErrorIs(t, err, syncDomain.ErrEntityNotFound)
		mockStore.AssertExpectations(t)
	})

	t.Run("Error_TypeMismatch", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewMealLogHandler(mockStore, mockUploader)

		record := newWorkoutRecord(t, ownerID)
		mockStore.On("GetByID", mock.Anything, record.ID, ownerID).Return(record, nil).Once()

		_, err := handler.Fetch(ctx, record.ID, ownerID)

		assert.ErrorIs(t, err, fitnessDomain.ErrRecordTypeMismatch)
	})

	t.Run("Error_StoreFailurePropagates", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		recordID := uuid.Must(uuid.NewV7())
		mockStore.On("GetByID", mock.Anything, recordID, ownerID).
			Return(nil, apperrors.ErrInternal).
			Once()

		_, err := handler.Fetch(ctx, recordID, ownerID)

		assert.ErrorIs(t, err, apperrors.ErrInternal)
	})
}

// TestRecordHandler_Upload tests the Upload method of recordHandler.
func TestRecordHandler_Upload(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_DelegatesToUploader", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		record := newWorkoutRecord(t, ownerID)
		mockUploader.On("Upload", mock.Anything, record).
			Return(syncDomain.Success("workout-1")).
			Once()

		outcome := handler.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadSuccess, outcome.Kind)
		assert.Equal(t, "workout-1", outcome.RemoteID)
		mockUploader.AssertExpectations(t)
	})

	t.Run("Permanent_NotARecord", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		outcome := handler.Upload(ctx, "not a record")

		assert.Equal(t, syncDomain.UploadPermanent, outcome.Kind)
		mockUploader.AssertNotCalled(t, "Upload")
	})

	t.Run("Permanent_InvalidPayload", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		record, err := fitnessDomain.NewRecord(ownerID, fitnessDomain.RecordTypeWorkout, &fitnessDomain.Workout{
			Name: "", // missing required fields
		})
		require.NoError(t, err)

		outcome := handler.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadPermanent, outcome.Kind)
		assert.ErrorIs(t, outcome.Err, apperrors.ErrInvalidInput)
		mockUploader.AssertNotCalled(t, "Upload")
	})

	t.Run("Permanent_MalformedPayload", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		mockUploader := &mocks.MockRemoteUploader{}
		handler := handlers.NewWorkoutHandler(mockStore, mockUploader)

		record := newWorkoutRecord(t, ownerID)
		record.Payload = []byte("{not json")

		outcome := handler.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadPermanent, outcome.Kind)
		mockUploader.AssertNotCalled(t, "Upload")
	})
}

// TestRecordHandler_Reconcile tests the Reconcile method of recordHandler.
func TestRecordHandler_Reconcile(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	recordID := uuid.Must(uuid.NewV7())

	mockStore := &mocks.MockRecordStore{}
	mockUploader := &mocks.MockRemoteUploader{}
	handler := handlers.NewSleepSessionHandler(mockStore, mockUploader)

	mockStore.On("MarkSynced", mock.Anything, recordID, "sleep-5", ownerID).Return(nil).Once()

	err := handler.Reconcile(ctx, recordID, "sleep-5", ownerID)

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestRecordHandler_DeleteRemote tests the DeleteRemote method of recordHandler.
func TestRecordHandler_DeleteRemote(t *testing.T) {
	ctx := context.Background()

	mockStore := &mocks.MockRecordStore{}
	mockUploader := &mocks.MockRemoteUploader{}
	handler := handlers.NewMealLogHandler(mockStore, mockUploader)

	mockUploader.On("Delete", mock.Anything, "meal-3").Return(nil).Once()

	err := handler.DeleteRemote(ctx, "meal-3")

	assert.NoError(t, err)
	mockUploader.AssertExpectations(t)
}

// TestRegisterAll tests that every record type gets a wired handler.
func TestRegisterAll(t *testing.T) {
	registry := syncUseCase.NewRegistry()
	mockStore := &mocks.MockRecordStore{}
	mockUploader := &mocks.MockRemoteUploader{}

	handlers.RegisterAll(registry, mockStore, mockUploader)

	assert.ElementsMatch(t, syncDomain.AllEventTypes, registry.RegisteredTypes())
	for _, eventType := range syncDomain.AllEventTypes {
		handler, ok := registry.Lookup(eventType)
		require.True(t, ok)
		assert.Equal(t, eventType, handler.EventType())
	}
}
