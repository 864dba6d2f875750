package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

var eventColumnNames = []string{
	"id", "event_type", "entity_id", "owner_id", "status", "attempt_count", "max_attempts",
	"priority", "is_new_record", "error_message", "metadata", "created_at", "last_attempt_at", "completed_at",
}

func setupPostgresEventRepo(t *testing.T) (*PostgreSQLEventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgreSQLEventRepository(db), mock
}

func TestPostgreSQLEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)
		event := syncDomain.NewSyncEvent(ownerID, syncDomain.EventTypeWorkout, uuid.Must(uuid.NewV7()), true, 2,
			map[string]string{"source": "watch"})

		mock.ExpectExec("INSERT INTO sync_events").
			WithArgs(
				event.ID, event.EventType, event.EntityID, event.OwnerID,
				event.Status, event.AttemptCount, event.MaxAttempts, event.Priority,
				event.IsNewRecord, nil, `{"source":"watch"}`, event.CreatedAt, nil, nil,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, event)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)
		event := syncDomain.NewSyncEvent(ownerID, syncDomain.EventTypeWorkout, uuid.Must(uuid.NewV7()), true, 0, nil)

		mock.ExpectExec("INSERT INTO sync_events").
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, event)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create sync event")
	})
}

func TestPostgreSQLEventRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)
		eventID := uuid.Must(uuid.NewV7())
		entityID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		rows := sqlmock.NewRows(eventColumnNames).
			AddRow(
				eventID.String(), "workout", entityID.String(), ownerID.String(),
				"pending", 0, 5, 2, true, nil, `{"source":"watch"}`, now, nil, nil,
			)

		mock.ExpectQuery("SELECT (.+) FROM sync_events").
			WithArgs(ownerID, syncDomain.SyncEventStatusPending, syncDomain.SyncEventStatusFailed, 10).
			WillReturnRows(rows)

		events, err := repo.GetPending(ctx, ownerID, 10)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, eventID, events[0].ID)
		assert.Equal(t, syncDomain.EventTypeWorkout, events[0].EventType)
		assert.Equal(t, entityID, events[0].EntityID)
		assert.Equal(t, 2, events[0].Priority)
		assert.True(t, events[0].IsNewRecord)
		assert.Equal(t, map[string]string{"source": "watch"}, events[0].Metadata)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM sync_events").
			WithArgs(ownerID, syncDomain.SyncEventStatusPending, syncDomain.SyncEventStatusFailed, 10).
			WillReturnRows(sqlmock.NewRows(eventColumnNames))

		events, err := repo.GetPending(ctx, ownerID, 10)

		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("CorruptMetadata", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)
		now := time.Now().UTC()

		rows := sqlmock.NewRows(eventColumnNames).
			AddRow(
				uuid.Must(uuid.NewV7()).String(), "workout", uuid.Must(uuid.NewV7()).String(), ownerID.String(),
				"pending", 0, 5, 0, true, nil, "{not json", now, nil, nil,
			)

		mock.ExpectQuery("SELECT (.+) FROM sync_events").
			WillReturnRows(rows)

		_, err := repo.GetPending(ctx, ownerID, 10)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal event metadata")
	})
}

func TestPostgreSQLEventRepository_GetLive(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	entityID := uuid.Must(uuid.NewV7())

	t.Run("Found", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)
		eventID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		rows := sqlmock.NewRows(eventColumnNames).
			AddRow(
				eventID.String(), "workout", entityID.String(), ownerID.String(),
				"pending", 0, 5, 0, true, nil, nil, now, nil, nil,
			)

		mock.ExpectQuery("SELECT (.+) FROM sync_events").
			WithArgs(
				ownerID, entityID, syncDomain.EventTypeWorkout,
				syncDomain.SyncEventStatusPending, syncDomain.SyncEventStatusProcessing,
				syncDomain.SyncEventStatusFailed,
			).
			WillReturnRows(rows)

		live, err := repo.GetLive(ctx, ownerID, entityID, syncDomain.EventTypeWorkout)

		require.NoError(t, err)
		require.NotNil(t, live)
		assert.Equal(t, eventID, live.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("None", func(t *testing.T) {
		repo, mock := setupPostgresEventRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM sync_events").
			WillReturnRows(sqlmock.NewRows(eventColumnNames))

		live, err := repo.GetLive(ctx, ownerID, entityID, syncDomain.EventTypeWorkout)

		require.NoError(t, err)
		assert.Nil(t, live)
	})
}

func TestPostgreSQLEventRepository_MarkFailed(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	eventID := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE sync_events").
		WithArgs(syncDomain.SyncEventStatusFailed, "upload failed", sqlmock.AnyArg(), eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFailed(ctx, eventID, "upload failed")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_MarkProcessing(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	eventID := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE sync_events").
		WithArgs(syncDomain.SyncEventStatusProcessing, eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkProcessing(ctx, eventID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_MarkCompleted(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	eventID := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE sync_events").
		WithArgs(syncDomain.SyncEventStatusCompleted, sqlmock.AnyArg(), eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkCompleted(ctx, eventID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	eventID := uuid.Must(uuid.NewV7())

	mock.ExpectExec("DELETE FROM sync_events").
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(ctx, eventID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_DeleteCompleted(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	mock.ExpectExec("DELETE FROM sync_events").
		WithArgs(syncDomain.SyncEventStatusCompleted, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	count, err := repo.DeleteCompleted(ctx, cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_CountCompleted(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(syncDomain.SyncEventStatusCompleted, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountCompleted(ctx, cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_ResetProcessing(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupPostgresEventRepo(t)
	ownerID := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE sync_events").
		WithArgs(syncDomain.SyncEventStatusPending, ownerID, syncDomain.SyncEventStatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := repo.ResetProcessing(ctx, ownerID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
