// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// EnqueueEventResponse represents a newly enqueued sync event in API responses.
type EnqueueEventResponse struct {
	EventID string `json:"event_id"`
}

// SyncEventResponse represents a sync event in API responses.
type SyncEventResponse struct {
	ID            string            `json:"id"`
	EventType     string            `json:"event_type"`
	EntityID      string            `json:"entity_id"`
	Status        string            `json:"status"`
	AttemptCount  int               `json:"attempt_count"`
	MaxAttempts   int               `json:"max_attempts"`
	Priority      int               `json:"priority"`
	IsNewRecord   bool              `json:"is_new_record"`
	ErrorMessage  *string           `json:"error_message,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	LastAttemptAt *time.Time        `json:"last_attempt_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// MapEventToResponse converts a domain sync event to an API response.
func MapEventToResponse(event *syncDomain.SyncEvent) SyncEventResponse {
	return SyncEventResponse{
		ID:            event.ID.String(),
		EventType:     string(event.EventType),
		EntityID:      event.EntityID.String(),
		Status:        string(event.Status),
		AttemptCount:  event.AttemptCount,
		MaxAttempts:   event.MaxAttempts,
		Priority:      event.Priority,
		IsNewRecord:   event.IsNewRecord,
		ErrorMessage:  event.ErrorMessage,
		Metadata:      event.Metadata,
		CreatedAt:     event.CreatedAt,
		LastAttemptAt: event.LastAttemptAt,
		CompletedAt:   event.CompletedAt,
	}
}

// ListEventsResponse represents a list of sync events in API responses.
type ListEventsResponse struct {
	Data []SyncEventResponse `json:"data"`
}

// MapEventsToListResponse converts a slice of domain sync events to a list response.
func MapEventsToListResponse(events []*syncDomain.SyncEvent) ListEventsResponse {
	data := make([]SyncEventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}

	return ListEventsResponse{
		Data: data,
	}
}
