package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

func newTestRecord(t *testing.T) *fitnessDomain.Record {
	t.Helper()
	record, err := fitnessDomain.NewRecord(
		uuid.Must(uuid.NewV7()),
		fitnessDomain.RecordTypeMealLog,
		&fitnessDomain.MealLog{
			Name:     "oatmeal",
			Calories: 350,
			EatenAt:  time.Now().UTC(),
		},
	)
	require.NoError(t, err)
	return record
}

// TestPostgresUploader_Upload tests the Upload method of PostgresUploader.
func TestPostgresUploader_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_InsertFreshRecord", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		record := newTestRecord(t)
		mock.ExpectExec("INSERT INTO remote_records").
			WillReturnResult(sqlmock.NewResult(0, 1))

		uploader := NewPostgresUploader(db)
		outcome := uploader.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadSuccess, outcome.Kind)
		assert.NotEmpty(t, outcome.RemoteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_UpdateAcknowledgedRecord", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		record := newTestRecord(t)
		remoteID := uuid.Must(uuid.NewV7()).String()
		record.RemoteID = &remoteID

		mock.ExpectExec("UPDATE remote_records").
			WillReturnResult(sqlmock.NewResult(0, 1))

		uploader := NewPostgresUploader(db)
		outcome := uploader.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadSuccess, outcome.Kind)
		assert.Equal(t, remoteID, outcome.RemoteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_VanishedRemoteCopyIsReinserted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		record := newTestRecord(t)
		remoteID := uuid.Must(uuid.NewV7()).String()
		record.RemoteID = &remoteID

		mock.ExpectExec("UPDATE remote_records").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO remote_records").
			WillReturnResult(sqlmock.NewResult(0, 1))

		uploader := NewPostgresUploader(db)
		outcome := uploader.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadSuccess, outcome.Kind)
		assert.NotEqual(t, remoteID, outcome.RemoteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyDone_DuplicateResolvesToExistingID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		record := newTestRecord(t)
		existingID := uuid.Must(uuid.NewV7()).String()

		mock.ExpectExec("INSERT INTO remote_records").
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "remote_records_owner_id_record_type_local_id_key"`))
		mock.ExpectQuery("SELECT id FROM remote_records").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingID))

		uploader := NewPostgresUploader(db)
		outcome := uploader.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadAlreadyDone, outcome.Kind)
		assert.Equal(t, existingID, outcome.RemoteID)
		assert.True(t, outcome.Succeeded())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retryable_ConnectionFailure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		record := newTestRecord(t)
		mock.ExpectExec("INSERT INTO remote_records").
			WillReturnError(errors.New("pq: connection refused"))

		uploader := NewPostgresUploader(db)
		outcome := uploader.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadRetryable, outcome.Kind)
		assert.Error(t, outcome.Err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retryable_DuplicateLookupFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		record := newTestRecord(t)
		mock.ExpectExec("INSERT INTO remote_records").
			WillReturnError(errors.New("pq: duplicate key value violates unique constraint"))
		mock.ExpectQuery("SELECT id FROM remote_records").
			WillReturnError(errors.New("pq: connection refused"))

		uploader := NewPostgresUploader(db)
		outcome := uploader.Upload(ctx, record)

		assert.Equal(t, syncDomain.UploadRetryable, outcome.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestPostgresUploader_Delete tests the Delete method of PostgresUploader.
func TestPostgresUploader_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		mock.ExpectExec("DELETE FROM remote_records").
			WillReturnResult(sqlmock.NewResult(0, 1))

		uploader := NewPostgresUploader(db)
		assert.NoError(t, uploader.Delete(ctx, "remote-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_AlreadyGone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		mock.ExpectExec("DELETE FROM remote_records").
			WillReturnResult(sqlmock.NewResult(0, 0))

		uploader := NewPostgresUploader(db)
		assert.NoError(t, uploader.Delete(ctx, "remote-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_ConnectionFailure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		mock.ExpectExec("DELETE FROM remote_records").
			WillReturnError(errors.New("pq: connection refused"))

		uploader := NewPostgresUploader(db)
		assert.Error(t, uploader.Delete(ctx, "remote-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
