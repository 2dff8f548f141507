package runs

import (
	"time"

	"reconcile-backend/internal/matching"
	"reconcile-backend/internal/roles"
)

// State is the position of a run in the reconciliation workflow.
type State string

const (
	StateIngested       State = "INGESTED"
	StateExtracting     State = "EXTRACTING"
	StateExtracted      State = "EXTRACTED"
	StateMatching       State = "MATCHING"
	StateAwaitingReview State = "AWAITING_REVIEW"
	StateCommitting     State = "COMMITTING"
	StateCommitted      State = "COMMITTED"
	StateRejected       State = "REJECTED"
	StateCancelled      State = "CANCELLED"
	StateFailed         State = "FAILED"
)

// Terminal reports whether a run in this state can never progress again.
func (s State) Terminal() bool {
	switch s {
	case StateCommitted, StateRejected, StateCancelled, StateFailed:
		return true
	}
	return false
}

// CommitStatus is the per-candidate outcome of the commit phase.
type CommitStatus string

const (
	CommitOK           CommitStatus = "ok"
	CommitFailed       CommitStatus = "failed"
	CommitNotAttempted CommitStatus = "not_attempted"
)

// CommitOutcome records what happened to one approved candidate at commit.
type CommitOutcome struct {
	CandidateID string       `json:"candidateId"`
	RecordID    string       `json:"recordId,omitempty"`
	Status      CommitStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
}

// Run is one reconciliation workflow instance. Everything needed to resume
// after a crash lives on the struct; the checkpoint store snapshots it at
// every state transition.
type Run struct {
	ID             string                `json:"id"`
	Scope          string                `json:"scope"`
	DocumentID     string                `json:"documentId"`
	Fingerprint    string                `json:"fingerprint"`
	State          State                 `json:"state"`
	Extracted      []roles.ExtractedRole `json:"extracted,omitempty"`
	Candidates     []matching.Candidate  `json:"candidates,omitempty"`
	Decision       Decision              `json:"decision,omitempty"`
	Outcomes       []CommitOutcome       `json:"outcomes,omitempty"`
	FailureCode    string                `json:"failureCode,omitempty"`
	FailureMessage string                `json:"failureMessage,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}
