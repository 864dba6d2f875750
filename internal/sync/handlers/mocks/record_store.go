// Package mocks provides mock implementations for testing record handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

// GetByID mocks the GetByID method of RecordStore.
func (m *MockRecordStore) GetByID(
	ctx context.Context,
	recordID, ownerID uuid.UUID,
) (*fitnessDomain.Record, error) {
	args := m.Called(ctx, recordID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fitnessDomain.Record), args.Error(1)
}

// MarkSynced mocks the MarkSynced method of RecordStore.
func (m *MockRecordStore) MarkSynced(
	ctx context.Context,
	recordID uuid.UUID,
	remoteID string,
	ownerID uuid.UUID,
) error {
	args := m.Called(ctx, recordID, remoteID, ownerID)
	return args.Error(0)
}

// MockRemoteUploader is a mock implementation of RemoteUploader for testing.
type MockRemoteUploader struct {
	mock.Mock
}

// Upload mocks the Upload method of RemoteUploader.
func (m *MockRemoteUploader) Upload(
	ctx context.Context,
	record *fitnessDomain.Record,
) syncDomain.UploadOutcome {
	args := m.Called(ctx, record)
	return args.Get(0).(syncDomain.UploadOutcome)
}

// Delete mocks the Delete method of RemoteUploader.
func (m *MockRemoteUploader) Delete(ctx context.Context, remoteID string) error {
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}
