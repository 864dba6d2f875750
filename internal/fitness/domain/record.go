// Package domain defines the locally tracked fitness entities: the record
// envelope persisted by the on-device store and the typed payloads it
// carries.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/fitsync/fitsync/internal/errors"
)

// RecordType identifies the kind of fitness data a record holds. The set
// mirrors the sync event types one-to-one.
type RecordType string

const (
	RecordTypeProgressMetric   RecordType = "progress_metric"
	RecordTypeBodyMeasurement  RecordType = "body_measurement"
	RecordTypeActivitySnapshot RecordType = "activity_snapshot"
	RecordTypeSleepSession     RecordType = "sleep_session"
	RecordTypeMealLog          RecordType = "meal_log"
	RecordTypeWorkout          RecordType = "workout"
	RecordTypeWorkoutTemplate  RecordType = "workout_template"
)

// AllRecordTypes lists every known record type.
var AllRecordTypes = []RecordType{
	RecordTypeProgressMetric,
	RecordTypeBodyMeasurement,
	RecordTypeActivitySnapshot,
	RecordTypeSleepSession,
	RecordTypeMealLog,
	RecordTypeWorkout,
	RecordTypeWorkoutTemplate,
}

// IsValidRecordType reports whether s names a known record type.
func IsValidRecordType(s string) bool {
	for _, rt := range AllRecordTypes {
		if string(rt) == s {
			return true
		}
	}
	return false
}

// Validatable is satisfied by every typed record payload.
type Validatable interface {
	Validate() error
}

// NewPayload returns an empty typed payload for the record type, ready to
// be decoded into.
func NewPayload(recordType RecordType) (Validatable, error) {
	switch recordType {
	case RecordTypeProgressMetric:
		return &ProgressMetric{}, nil
	case RecordTypeBodyMeasurement:
		return &BodyMeasurement{}, nil
	case RecordTypeActivitySnapshot:
		return &ActivitySnapshot{}, nil
	case RecordTypeSleepSession:
		return &SleepSession{}, nil
	case RecordTypeMealLog:
		return &MealLog{}, nil
	case RecordTypeWorkout:
		return &Workout{}, nil
	case RecordTypeWorkoutTemplate:
		return &WorkoutTemplate{}, nil
	default:
		return nil, ErrUnknownRecordType
	}
}

// Record is the envelope the local store persists: one row per tracked
// entity, the typed payload serialized as JSON. RemoteID and SyncedAt are
// set by the sync engine once the backend has acknowledged the record.
type Record struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	RecordType RecordType
	Payload    json.RawMessage
	RemoteID   *string
	SyncedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRecord creates a record with a fresh v7 id and the payload serialized.
func NewRecord(ownerID uuid.UUID, recordType RecordType, payload any) (*Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize record payload")
	}
	now := time.Now().UTC()
	return &Record{
		ID:         uuid.Must(uuid.NewV7()),
		OwnerID:    ownerID,
		RecordType: recordType,
		Payload:    data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsSynced reports whether the backend has acknowledged the current state.
func (r *Record) IsSynced() bool {
	return r.SyncedAt != nil
}

// DecodePayload unmarshals the payload into v.
func (r *Record) DecodePayload(v any) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return apperrors.Wrap(err, "failed to decode record payload")
	}
	return nil
}
