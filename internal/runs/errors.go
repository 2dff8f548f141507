package runs

import "errors"

var (
	// ErrRunNotFound is returned when a run does not exist in the scope.
	ErrRunNotFound = errors.New("run not found")
	// ErrDuplicateRun is returned when the document fingerprint already has a live run.
	ErrDuplicateRun = errors.New("an active run already exists for this document")
	// ErrConcurrentRun is returned when another submission holds the fingerprint lock.
	ErrConcurrentRun = errors.New("a concurrent submission holds this document")
	// ErrInvalidState is returned when an operation does not apply to the run's state.
	ErrInvalidState = errors.New("operation not valid in the run's current state")
)

// Failure codes stored on FAILED runs.
const (
	FailureExtraction  = "EXTRACTION_FAILURE"
	FailureRecordStore = "RECORD_STORE_FAILURE"
	FailureInternal    = "INTERNAL_FAILURE"
)
