package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveRecordRequest_Validate(t *testing.T) {
	payload := json.RawMessage(`{"weight_kg": 81.5, "recorded_at": "2026-08-20T07:00:00Z"}`)

	tests := []struct {
		name    string
		request SaveRecordRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: SaveRecordRequest{RecordType: "progress_metric", Payload: payload},
			wantErr: false,
		},
		{
			name:    "valid request with priority",
			request: SaveRecordRequest{RecordType: "workout", Payload: payload, Priority: 10},
			wantErr: false,
		},
		{
			name:    "missing record type",
			request: SaveRecordRequest{Payload: payload},
			wantErr: true,
		},
		{
			name:    "unknown record type",
			request: SaveRecordRequest{RecordType: "heart_rate", Payload: payload},
			wantErr: true,
		},
		{
			name:    "missing payload",
			request: SaveRecordRequest{RecordType: "workout"},
			wantErr: true,
		},
		{
			name:    "null payload",
			request: SaveRecordRequest{RecordType: "workout", Payload: json.RawMessage("null")},
			wantErr: true,
		},
		{
			name:    "null payload with whitespace",
			request: SaveRecordRequest{RecordType: "workout", Payload: json.RawMessage(" null ")},
			wantErr: true,
		},
		{
			name:    "negative priority",
			request: SaveRecordRequest{RecordType: "workout", Payload: payload, Priority: -3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
