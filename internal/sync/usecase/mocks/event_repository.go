// Package mocks provides mock implementations for testing sync use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// MockEventRepository is a mock implementation of EventRepository for testing.
type MockEventRepository struct {
	mock.Mock
}

// Create mocks the Create method of EventRepository.
func (m *MockEventRepository) Create(ctx context.Context, event *syncDomain.SyncEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// GetPending mocks the GetPending method of EventRepository.
func (m *MockEventRepository) GetPending(
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

// GetLive mocks the GetLive method of EventRepository.
func (m *MockEventRepository) GetLive(
	ctx context.Context,
	ownerID, entityID uuid.UUID,
	eventType syncDomain.EventType,
) (*syncDomain.SyncEvent, error) {
	args := m.Called(ctx, ownerID, entityID, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncDomain.SyncEvent), args.Error(1)
}

// MarkProcessing mocks the MarkProcessing method of EventRepository.
func (m *MockEventRepository) MarkProcessing(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MarkFailed mocks the MarkFailed method of EventRepository.
func (m *MockEventRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, errorMessage string) error {
	args := m.Called(ctx, eventID, errorMessage)
	return args.Error(0)
}

// MarkCompleted mocks the MarkCompleted method of EventRepository.
func (m *MockEventRepository) MarkCompleted(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// Delete mocks the Delete method of EventRepository.
func (m *MockEventRepository) Delete(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// GetStale mocks the GetStale method of EventRepository.
func (m *MockEventRepository) GetStale(
	ctx context.Context,
	ownerID uuid.UUID,
	olderThan time.Time,
) ([]*syncDomain.SyncEvent, error) {
	args := m.Called(ctx, ownerID, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncDomain.SyncEvent), args.Error(1)
}

// GetFailed mocks the GetFailed method of EventRepository.
func (m *MockEventRepository) GetFailed(
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

// DeleteCompleted mocks the DeleteCompleted method of EventRepository.
func (m *MockEventRepository) DeleteCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// CountCompleted mocks the CountCompleted method of EventRepository.
func (m *MockEventRepository) CountCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// ResetProcessing mocks the ResetProcessing method of EventRepository.
func (m *MockEventRepository) ResetProcessing(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
