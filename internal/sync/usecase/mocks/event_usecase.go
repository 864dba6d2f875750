package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
)

// MockEventUseCase is a mock implementation of EventUseCase for testing.
type MockEventUseCase struct {
	mock.Mock
}

// Enqueue mocks the Enqueue method of EventUseCase.
func (m *MockEventUseCase) Enqueue(ctx context.Context, input *syncUseCase.EnqueueInput) (uuid.UUID, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// ListFailed mocks the ListFailed method of EventUseCase.
func (m *MockEventUseCase) ListFailed(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*syncDomain.SyncEvent, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.SyncEvent), args.Error(1)
}

// ListStale mocks the ListStale method of EventUseCase.
func (m *MockEventUseCase) ListStale(ctx context.Context, ownerID uuid.UUID) ([]*syncDomain.SyncEvent, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.SyncEvent), args.Error(1)
}

// CleanupCompleted mocks the CleanupCompleted method of EventUseCase.
func (m *MockEventUseCase) CleanupCompleted(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockEngine is a mock implementation of Engine for testing.
type MockEngine struct {
	mock.Mock
}

// Start mocks the Start method of Engine.
func (m *MockEngine) Start(ownerID uuid.UUID) error {
	args := m.Called(ownerID)
	return args.Error(0)
}

// Stop mocks the Stop method of Engine.
func (m *MockEngine) Stop() {
	m.Called()
}

// TriggerImmediate mocks the TriggerImmediate method of Engine.
func (m *MockEngine) TriggerImmediate(ownerID uuid.UUID) {
	m.Called(ownerID)
}

// TriggerImmediateAndWait mocks the TriggerImmediateAndWait method of Engine.
func (m *MockEngine) TriggerImmediateAndWait(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}
