package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	syncMocks "github.com/fitsync/fitsync/internal/sync/usecase/mocks"
)

func TestRunListFailedEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	ownerID := uuid.Must(uuid.NewV7())

	failedEvent := func() *syncDomain.SyncEvent {
		errMsg := "connection refused"
		return &syncDomain.SyncEvent{
			ID:           uuid.Must(uuid.NewV7()),
			EventType:    syncDomain.EventTypeWorkout,
			EntityID:     uuid.Must(uuid.NewV7()),
			OwnerID:      ownerID,
			Status:       syncDomain.SyncEventStatusFailed,
			AttemptCount: 3,
			MaxAttempts:  5,
			ErrorMessage: &errMsg,
			CreatedAt:    time.Now().UTC(),
		}
	}

	t.Run("text-output", func(t *testing.T) {
		event := failedEvent()
		mockUseCase := &syncMocks.MockEventUseCase{}
		mockUseCase.On("ListFailed", ctx, ownerID, 50).
			Return([]*syncDomain.SyncEvent{event}, nil)

		var out bytes.Buffer
		err := RunListFailedEvents(ctx, mockUseCase, logger, &out, ownerID.String(), 50, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Found 1 failed event(s)")
		require.Contains(t, out.String(), event.ID.String())
		require.Contains(t, out.String(), "connection refused")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("text-output-empty", func(t *testing.T) {
		mockUseCase := &syncMocks.MockEventUseCase{}
		mockUseCase.On("ListFailed", ctx, ownerID, 50).
			Return([]*syncDomain.SyncEvent{}, nil)

		var out bytes.Buffer
		err := RunListFailedEvents(ctx, mockUseCase, logger, &out, ownerID.String(), 50, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "No failed events found")
	})

	t.Run("json-output", func(t *testing.T) {
		event := failedEvent()
		mockUseCase := &syncMocks.MockEventUseCase{}
		mockUseCase.On("ListFailed", ctx, ownerID, 10).
			Return([]*syncDomain.SyncEvent{event}, nil)

		var out bytes.Buffer
		err := RunListFailedEvents(ctx, mockUseCase, logger, &out, ownerID.String(), 10, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"id": "`+event.ID.String()+`"`)
		require.Contains(t, out.String(), `"error_message": "connection refused"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-owner", func(t *testing.T) {
		mockUseCase := &syncMocks.MockEventUseCase{}
		err := RunListFailedEvents(ctx, mockUseCase, logger, &bytes.Buffer{}, "not-a-uuid", 50, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid owner id")
	})

	t.Run("invalid-limit", func(t *testing.T) {
		mockUseCase := &syncMocks.MockEventUseCase{}
		err := RunListFailedEvents(ctx, mockUseCase, logger, &bytes.Buffer{}, ownerID.String(), 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "limit must be a positive number")
	})
}
