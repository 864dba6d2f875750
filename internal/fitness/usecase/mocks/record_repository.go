// Package mocks provides mock implementations for testing record use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository for testing.
type MockRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method of RecordRepository.
func (m *MockRecordRepository) Create(ctx context.Context, record *fitnessDomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Update mocks the Update method of RecordRepository.
func (m *MockRecordRepository) Update(ctx context.Context, record *fitnessDomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetByID mocks the GetByID method of RecordRepository.
func (m *MockRecordRepository) GetByID(
	ctx context.Context,
	recordID, ownerID uuid.UUID,
) (*fitnessDomain.Record, error) {
	args := m.Called(ctx, recordID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fitnessDomain.Record), args.Error(1)
}

// ListByType mocks the ListByType method of RecordRepository.
func (m *MockRecordRepository) ListByType(
	ctx context.Context,
	ownerID uuid.UUID,
	recordType fitnessDomain.RecordType,
	limit int,
) ([]*fitnessDomain.Record, error) {
	args := m.Called(ctx, ownerID, recordType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fitnessDomain.Record), args.Error(1)
}

// MarkSynced mocks the MarkSynced method of RecordRepository.
func (m *MockRecordRepository) MarkSynced(
	ctx context.Context,
	recordID uuid.UUID,
	remoteID string,
	ownerID uuid.UUID,
) error {
	args := m.Called(ctx, recordID, remoteID, ownerID)
	return args.Error(0)
}

// Delete mocks the Delete method of RecordRepository.
func (m *MockRecordRepository) Delete(ctx context.Context, recordID, ownerID uuid.UUID) error {
	args := m.Called(ctx, recordID, ownerID)
	return args.Error(0)
}
