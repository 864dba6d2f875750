package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	fitnessUseCase "github.com/fitsync/fitsync/internal/fitness/usecase"
)

// MockRecordUseCase is a mock implementation of RecordUseCase for testing.
type MockRecordUseCase struct {
	mock.Mock
}

// SaveRecord mocks the SaveRecord method of RecordUseCase.
func (m *MockRecordUseCase) SaveRecord(
	ctx context.Context,
	input *fitnessUseCase.SaveRecordInput,
) (*fitnessDomain.Record, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fitnessDomain.Record), args.Error(1)
}

// GetRecord mocks the GetRecord method of RecordUseCase.
func (m *MockRecordUseCase) GetRecord(
	ctx context.Context,
	ownerID, recordID uuid.UUID,
) (*fitnessDomain.Record, error) {
	args := m.Called(ctx, ownerID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fitnessDomain.Record), args.Error(1)
}

// ListRecords mocks the ListRecords method of RecordUseCase.
func (m *MockRecordUseCase) ListRecords(
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

// DeleteRecord mocks the DeleteRecord method of RecordUseCase.
func (m *MockRecordUseCase) DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error {
	args := m.Called(ctx, ownerID, recordID)
	return args.Error(0)
}
