// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"bytes"
	"encoding/json"

	validation "github.com/jellydator/validation"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	customValidation "github.com/fitsync/fitsync/internal/validation"
)

// SaveRecordRequest contains the parameters for creating or updating a
// fitness record. The record id comes from the URL on updates. The payload
// is validated against the typed schema for the record type by the use case.
type SaveRecordRequest struct {
	RecordType string          `json:"record_type"`
	Payload    json.RawMessage `json:"payload"`
	Priority   int             `json:"priority"`
}

// Validate checks if the save record request is valid.
func (r *SaveRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RecordType,
			validation.Required,
			customValidation.NotBlank,
			validation.By(validateRecordType),
		),
		validation.Field(&r.Payload,
			validation.Required,
			validation.By(validatePayloadPresent),
		),
		validation.Field(&r.Priority,
			validation.Min(0),
		),
	)
}

// validatePayloadPresent rejects a JSON null payload. Binding stores the
// literal bytes "null" in the RawMessage, which Required alone accepts.
func validatePayloadPresent(value interface{}) error {
	payload, ok := value.(json.RawMessage)
	if !ok {
		return validation.NewError("validation_payload", "must be a JSON value")
	}
	if len(payload) == 0 || string(bytes.TrimSpace(payload)) == "null" {
		return validation.NewError("validation_payload", "cannot be blank")
	}
	return nil
}

// validateRecordType validates that the record type is one of the known types.
func validateRecordType(value interface{}) error {
	recordType, ok := value.(string)
	if !ok {
		return validation.NewError("validation_record_type", "must be a string")
	}
	if !fitnessDomain.IsValidRecordType(recordType) {
		return validation.NewError("validation_record_type", "unknown record type")
	}
	return nil
}
