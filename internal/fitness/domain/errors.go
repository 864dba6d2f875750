package domain

import (
	"github.com/fitsync/fitsync/internal/errors"
)

// Fitness record errors.
var (
	// ErrRecordNotFound indicates no record with the given id exists for
	// the owner.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "fitness record not found")

	// ErrUnknownRecordType indicates an unrecognized record type tag.
	ErrUnknownRecordType = errors.Wrap(errors.ErrInvalidInput, "unknown record type")

	// ErrRecordTypeMismatch indicates the stored record's type does not
	// match the type the caller asked for.
	ErrRecordTypeMismatch = errors.Wrap(errors.ErrInvalidInput, "record type mismatch")
)
