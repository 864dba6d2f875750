package domain

// UploadOutcomeKind discriminates the result of a remote upload attempt.
// Modeling the retry/non-retry decision as a tagged result keeps it
// explicit instead of hiding it in error-type checks.
type UploadOutcomeKind int

const (
	// UploadSuccess means the backend accepted the upload and assigned an id.
	UploadSuccess UploadOutcomeKind = iota
	// UploadAlreadyDone means the backend already has the record (e.g. a
	// duplicate conflict); the side effect happened, so it is success.
	UploadAlreadyDone
	// UploadRetryable means a transient network/server failure; the event
	// should be retried per the backoff policy.
	UploadRetryable
	// UploadPermanent means the attempt can never succeed as-is; the
	// generic retry budget still applies rather than special-casing.
	UploadPermanent
)

// UploadOutcome is the tagged result of an upload attempt.
type UploadOutcome struct {
	Kind     UploadOutcomeKind
	RemoteID string
	Err      error
}

// Succeeded reports whether the remote side effect is in place.
func (o UploadOutcome) Succeeded() bool {
	return o.Kind == UploadSuccess || o.Kind == UploadAlreadyDone
}

// Success builds a successful outcome carrying the backend-assigned id.
func Success(remoteID string) UploadOutcome {
	return UploadOutcome{Kind: UploadSuccess, RemoteID: remoteID}
}

// AlreadyDone builds an outcome for uploads the backend already has.
// remoteID may be empty when the duplicate response does not echo the id.
func AlreadyDone(remoteID string) UploadOutcome {
	return UploadOutcome{Kind: UploadAlreadyDone, RemoteID: remoteID}
}

// Retryable builds an outcome for transient failures.
func Retryable(err error) UploadOutcome {
	return UploadOutcome{Kind: UploadRetryable, Err: err}
}

// Permanent builds an outcome for failures that will not heal on retry.
func Permanent(err error) UploadOutcome {
	return UploadOutcome{Kind: UploadPermanent, Err: err}
}
