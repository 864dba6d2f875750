package domain

import (
	"github.com/fitsync/fitsync/internal/errors"
)

// Sync engine errors.
var (
	// ErrEventNotFound indicates a sync event with the specified ID was not found.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "sync event not found")

	// ErrEntityNotFound indicates the local entity vanished before upload.
	ErrEntityNotFound = errors.Wrap(errors.ErrNotFound, "local entity not found")

	// ErrUnsupportedEventType indicates no handler is registered for the
	// event's type. This fails deterministically every attempt until the
	// retry budget is exhausted.
	ErrUnsupportedEventType = errors.New("unsupported event type")

	// ErrMissingRemoteID indicates the upload response carried no backend id.
	ErrMissingRemoteID = errors.New("upload response missing remote id")

	// ErrEngineRunning indicates Start was called while a run is active.
	ErrEngineRunning = errors.Wrap(errors.ErrConflict, "sync engine already running")

	// ErrEngineStopped indicates an operation that needs a running engine.
	ErrEngineStopped = errors.Wrap(errors.ErrConflict, "sync engine not running")

	// ErrUnauthenticated indicates the caller has no valid session; owner
	// scoping is impossible without one.
	ErrUnauthenticated = errors.Wrap(errors.ErrUnauthorized, "no authenticated owner")
)
