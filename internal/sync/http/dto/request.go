// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	customValidation "github.com/fitsync/fitsync/internal/validation"
)

// EnqueueEventRequest contains the parameters for enqueueing a sync event.
// Most events are enqueued transactionally by the record use case; this
// endpoint exists for re-queueing and tooling.
type EnqueueEventRequest struct {
	EventType   string            `json:"event_type"`
	EntityID    string            `json:"entity_id"`
	IsNewRecord bool              `json:"is_new_record"`
	Priority    int               `json:"priority"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the enqueue event request is valid.
func (r *EnqueueEventRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EventType,
			validation.Required,
			customValidation.NotBlank,
			validation.By(validateEventType),
		),
		validation.Field(&r.EntityID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&r.Priority,
			validation.Min(0),
		),
	)
}

// validateEventType validates that the event type has a registered handler.
func validateEventType(value interface{}) error {
	eventType, ok := value.(string)
	if !ok {
		return validation.NewError("validation_event_type", "must be a string")
	}
	if !syncDomain.IsValidEventType(eventType) {
		return validation.NewError("validation_event_type", "unknown event type")
	}
	return nil
}
