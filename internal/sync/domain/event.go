// Package domain defines the core sync domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncEventStatus represents the lifecycle status of a sync event.
type SyncEventStatus string

const (
	SyncEventStatusPending    SyncEventStatus = "pending"
	SyncEventStatusProcessing SyncEventStatus = "processing"
	SyncEventStatusCompleted  SyncEventStatus = "completed"
	SyncEventStatusFailed     SyncEventStatus = "failed"
)

// EventType identifies which entity handler applies to an event.
// The set is closed; new entity kinds require a new constant and a
// registered handler.
type EventType string

const (
	EventTypeProgressMetric   EventType = "progress_metric"
	EventTypeBodyMeasurement  EventType = "body_measurement"
	EventTypeActivitySnapshot EventType = "activity_snapshot"
	EventTypeSleepSession     EventType = "sleep_session"
	EventTypeMealLog          EventType = "meal_log"
	EventTypeWorkout          EventType = "workout"
	EventTypeWorkoutTemplate  EventType = "workout_template"
)

// AllEventTypes lists every known event type.
var AllEventTypes = []EventType{
	EventTypeProgressMetric,
	EventTypeBodyMeasurement,
	EventTypeActivitySnapshot,
	EventTypeSleepSession,
	EventTypeMealLog,
	EventTypeWorkout,
	EventTypeWorkoutTemplate,
}

// IsValidEventType reports whether s names a known event type.
func IsValidEventType(s string) bool {
	for _, et := range AllEventTypes {
		if string(et) == s {
			return true
		}
	}
	return false
}

// DefaultMaxAttempts is the retry budget applied when an event is created
// without an explicit one.
const DefaultMaxAttempts = 5

// Metadata keys used by handlers for operation-specific side data.
const (
	// MetadataKeyOperation marks the kind of remote side effect; only
	// "delete" is currently recognized.
	MetadataKeyOperation = "operation"
	// MetadataKeyRemoteID carries the backend-assigned id for delete operations.
	MetadataKeyRemoteID = "remote_id"

	OperationDelete = "delete"
)

// SyncEvent represents "entity X of type T for user U needs remote sync".
// The entity itself is not embedded; handlers re-fetch it at processing
// time so the upload never ships stale state.
type SyncEvent struct {
	ID            uuid.UUID
	EventType     EventType
	EntityID      uuid.UUID
	OwnerID       uuid.UUID
	Status        SyncEventStatus
	AttemptCount  int
	MaxAttempts   int
	Priority      int
	IsNewRecord   bool
	ErrorMessage  *string
	Metadata      map[string]string
	CreatedAt     time.Time
	LastAttemptAt *time.Time
	CompletedAt   *time.Time
}

// NewSyncEvent creates a pending event with a fresh v7 id and the default
// retry budget.
func NewSyncEvent(
	ownerID uuid.UUID,
	eventType EventType,
	entityID uuid.UUID,
	isNewRecord bool,
	priority int,
	metadata map[string]string,
) *SyncEvent {
	return &SyncEvent{
		ID:          uuid.Must(uuid.NewV7()),
		EventType:   eventType,
		EntityID:    entityID,
		OwnerID:     ownerID,
		Status:      SyncEventStatusPending,
		MaxAttempts: DefaultMaxAttempts,
		Priority:    priority,
		IsNewRecord: isNewRecord,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}

// CanRetry reports whether the event still has retry budget left.
func (e *SyncEvent) CanRetry() bool {
	return e.AttemptCount < e.MaxAttempts
}

// IsExhausted reports whether the event has spent its retry budget.
// Exhausted failed events are never auto-deleted; they stay visible for
// diagnostics.
func (e *SyncEvent) IsExhausted() bool {
	return e.Status == SyncEventStatusFailed && !e.CanRetry()
}

// IsDeleteOperation reports whether the event encodes a remote delete.
func (e *SyncEvent) IsDeleteOperation() bool {
	return e.Metadata[MetadataKeyOperation] == OperationDelete
}

// RemoteID returns the backend id carried in metadata for delete
// operations, if any.
func (e *SyncEvent) RemoteID() (string, bool) {
	id, ok := e.Metadata[MetadataKeyRemoteID]
	return id, ok && id != ""
}
