package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
	"github.com/fitsync/fitsync/internal/sync/usecase/mocks"
)

func newTestEventUseCase(repo *mocks.MockEventRepository) syncUseCase.EventUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return syncUseCase.NewEventUseCase(
		syncUseCase.EventUseCaseConfig{MaxAttempts: 5, StaleThreshold: 5 * time.Minute},
		repo,
		logger,
		nil,
	)
}

// TestEventUseCase_Enqueue tests the Enqueue method of eventUseCase.
func TestEventUseCase_Enqueue(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	entityID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("GetLive", mock.Anything, ownerID, entityID, syncDomain.EventTypeWorkout).
			Return(nil, nil).
			Once()

		var created *syncDomain.SyncEvent
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SyncEvent")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*syncDomain.SyncEvent)
			}).
			Return(nil).
			Once()

		eventID, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:     ownerID,
			EventType:   syncDomain.EventTypeWorkout,
			EntityID:    entityID,
			IsNewRecord: true,
			Priority:    2,
		})

		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, eventID)
		assert.Equal(t, eventID, created.ID)
		assert.Equal(t, ownerID, created.OwnerID)
		assert.Equal(t, entityID, created.EntityID)
		assert.Equal(t, syncDomain.EventTypeWorkout, created.EventType)
		assert.Equal(t, syncDomain.SyncEventStatusPending, created.Status)
		assert.Equal(t, 5, created.MaxAttempts)
		assert.Equal(t, 2, created.Priority)
		assert.True(t, created.IsNewRecord)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success_DeleteOperationMetadata", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("GetLive", mock.Anything, ownerID, entityID, syncDomain.EventTypeMealLog).
			Return(nil, nil).
			Once()

		var created *syncDomain.SyncEvent
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SyncEvent")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*syncDomain.SyncEvent)
			}).
			Return(nil).
			Once()

		_, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: syncDomain.EventTypeMealLog,
			EntityID:  entityID,
			Metadata: map[string]string{
				syncDomain.MetadataKeyOperation: syncDomain.OperationDelete,
				syncDomain.MetadataKeyRemoteID:  "meal-42",
			},
		})

		assert.NoError(t, err)
		assert.True(t, created.IsDeleteOperation())
		remoteID, ok := created.RemoteID()
		assert.True(t, ok)
		assert.Equal(t, "meal-42", remoteID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success_CoalescesWithLiveEvent", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		live := syncDomain.NewSyncEvent(ownerID, syncDomain.EventTypeWorkout, entityID, true, 0, nil)
		mockRepo.On("GetLive", mock.Anything, ownerID, entityID, syncDomain.EventTypeWorkout).
			Return(live, nil).
			Once()

		eventID, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: syncDomain.EventTypeWorkout,
			EntityID:  entityID,
		})

		assert.NoError(t, err)
		assert.Equal(t, live.ID, eventID, "a second enqueue for live work must return the existing event")
		mockRepo.AssertNotCalled(t, "Create")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success_DeleteSupersedesQueuedUpload", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		queuedUpload := syncDomain.NewSyncEvent(ownerID, syncDomain.EventTypeWorkout, entityID, true, 0, nil)
		mockRepo.On("GetLive", mock.Anything, ownerID, entityID, syncDomain.EventTypeWorkout).
			Return(queuedUpload, nil).
			Once()
		mockRepo.On("Delete", mock.Anything, queuedUpload.ID).Return(nil).Once()

		var created *syncDomain.SyncEvent
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SyncEvent")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*syncDomain.SyncEvent)
			}).
			Return(nil).
			Once()

		eventID, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: syncDomain.EventTypeWorkout,
			EntityID:  entityID,
			Metadata: map[string]string{
				syncDomain.MetadataKeyOperation: syncDomain.OperationDelete,
			},
		})

		assert.NoError(t, err)
		assert.NotEqual(t, queuedUpload.ID, eventID)
		assert.True(t, created.IsDeleteOperation())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_NoOwner", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		_, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   uuid.Nil,
			EventType: syncDomain.EventTypeWorkout,
			EntityID:  entityID,
		})

		assert.ErrorIs(t, err, syncDomain.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Error_UnknownEventType", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		_, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: "heart_rate",
			EntityID:  entityID,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Error_MissingEntityID", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		_, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: syncDomain.EventTypeWorkout,
			EntityID:  uuid.Nil,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("GetLive", mock.Anything, ownerID, entityID, syncDomain.EventTypeWorkout).
			Return(nil, nil).
			Once()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SyncEvent")).
			Return(apperrors.ErrInternal).
			Once()

		_, err := uc.Enqueue(ctx, &syncUseCase.EnqueueInput{
			OwnerID:   ownerID,
			EventType: syncDomain.EventTypeWorkout,
			EntityID:  entityID,
		})

		assert.ErrorIs(t, err, apperrors.ErrInternal)
		mockRepo.AssertExpectations(t)
	})
}

// TestEventUseCase_ListFailed tests the ListFailed method of eventUseCase.
func TestEventUseCase_ListFailed(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		events := []*syncDomain.SyncEvent{
			{ID: uuid.Must(uuid.NewV7()), Status: syncDomain.SyncEventStatusFailed},
		}
		mockRepo.On("GetFailed", mock.Anything, ownerID, 10).Return(events, nil).Once()

		got, err := uc.ListFailed(ctx, ownerID, 10)

		assert.NoError(t, err)
		assert.Equal(t, events, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success_DefaultLimit", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("GetFailed", mock.Anything, ownerID, 50).
			Return([]*syncDomain.SyncEvent{}, nil).
			Once()

		_, err := uc.ListFailed(ctx, ownerID, 0)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_NoOwner", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		_, err := uc.ListFailed(ctx, uuid.Nil, 10)

		assert.ErrorIs(t, err, syncDomain.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "GetFailed")
	})
}

// TestEventUseCase_ListStale tests the ListStale method of eventUseCase.
func TestEventUseCase_ListStale(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_CutoffHonorsThreshold", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("GetStale", mock.Anything, ownerID, mock.MatchedBy(func(cutoff time.Time) bool {
			age := time.Since(cutoff)
			return age > 4*time.Minute && age < 6*time.Minute
		})).Return([]*syncDomain.SyncEvent{}, nil).Once()

		_, err := uc.ListStale(ctx, ownerID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_NoOwner", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		_, err := uc.ListStale(ctx, uuid.Nil)

		assert.ErrorIs(t, err, syncDomain.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "GetStale")
	})
}

// TestEventUseCase_CleanupCompleted tests the CleanupCompleted method of eventUseCase.
func TestEventUseCase_CleanupCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("DeleteCompleted", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			age := time.Since(cutoff)
			return age > 30*time.Minute && age < 90*time.Minute
		})).Return(int64(3), nil).Once()

		count, err := uc.CleanupCompleted(ctx, time.Hour, false)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success_DryRunOnlyCounts", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		mockRepo.On("CountCompleted", mock.Anything, mock.AnythingOfType("time.Time")).
			Return(int64(7), nil).
			Once()

		count, err := uc.CleanupCompleted(ctx, time.Hour, true)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		mockRepo.AssertNotCalled(t, "DeleteCompleted")
	})

	t.Run("Error_NegativeAge", func(t *testing.T) {
		mockRepo := &mocks.MockEventRepository{}
		uc := newTestEventUseCase(mockRepo)

		_, err := uc.CleanupCompleted(ctx, -time.Second, false)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "DeleteCompleted")
	})
}
