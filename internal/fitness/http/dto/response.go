// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"
	"time"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
)

// RecordResponse represents a fitness record in API responses.
type RecordResponse struct {
	ID         string          `json:"id"`
	RecordType string          `json:"record_type"`
	Payload    json.RawMessage `json:"payload"`
	RemoteID   *string         `json:"remote_id,omitempty"`
	SyncedAt   *time.Time      `json:"synced_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MapRecordToResponse converts a domain record to an API response.
func MapRecordToResponse(record *fitnessDomain.Record) RecordResponse {
	return RecordResponse{
		ID:         record.ID.String(),
		RecordType: string(record.RecordType),
		Payload:    record.Payload,
		RemoteID:   record.RemoteID,
		SyncedAt:   record.SyncedAt,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

// ListRecordsResponse represents a list of fitness records in API responses.
type ListRecordsResponse struct {
	Data []RecordResponse `json:"data"`
}

// MapRecordsToListResponse converts a slice of domain records to a list response.
func MapRecordsToListResponse(records []*fitnessDomain.Record) ListRecordsResponse {
	data := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapRecordToResponse(record))
	}

	return ListRecordsResponse{
		Data: data,
	}
}
