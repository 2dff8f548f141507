package runs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"reconcile-backend/internal/roles"
)

// DecisionKind is the reviewer's verdict for one candidate.
type DecisionKind string

const (
	DecisionApprove DecisionKind = "APPROVE"
	DecisionReject  DecisionKind = "REJECT"
	DecisionEdit    DecisionKind = "EDIT"
)

// CandidateDecision is the reviewer's verdict for one candidate. EDIT
// carries the corrected role to commit in place of the extracted one.
type CandidateDecision struct {
	Kind DecisionKind         `json:"kind"`
	Edit *roles.ExtractedRole `json:"edit,omitempty"`
}

// Decision maps candidate IDs to verdicts. A valid decision covers every
// candidate on the run, no more and no fewer.
type Decision map[string]CandidateDecision

// ParseDecision decodes a reviewer decision strictly: unknown JSON fields
// and unknown decision kinds are rejected rather than silently dropped,
// since a typo'd verdict must not default to anything.
func ParseDecision(r io.Reader) (Decision, error) {
	var body struct {
		Decisions map[string]CandidateDecision `json:"decisions"`
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decision parse: %w", err)
	}
	if len(body.Decisions) == 0 {
		return nil, fmt.Errorf("decision parse: decisions are required")
	}
	for id, cd := range body.Decisions {
		switch cd.Kind {
		case DecisionApprove, DecisionReject:
			if cd.Edit != nil {
				return nil, fmt.Errorf("decision parse: candidate %s: edit payload only valid with kind EDIT", id)
			}
		case DecisionEdit:
			if cd.Edit == nil {
				return nil, fmt.Errorf("decision parse: candidate %s: EDIT requires an edit payload", id)
			}
		default:
			return nil, fmt.Errorf("decision parse: candidate %s: unknown kind %q", id, cd.Kind)
		}
	}
	return body.Decisions, nil
}

// ParseDecisionBytes is ParseDecision over a byte slice.
func ParseDecisionBytes(raw []byte) (Decision, error) {
	return ParseDecision(bytes.NewReader(raw))
}

// Validate checks that the decision covers exactly the run's candidates.
func (d Decision) Validate(run Run) error {
	for _, cand := range run.Candidates {
		if _, ok := d[cand.ID]; !ok {
			return fmt.Errorf("decision missing candidate %s", cand.ID)
		}
	}
	if len(d) != len(run.Candidates) {
		for id := range d {
			known := false
			for _, cand := range run.Candidates {
				if cand.ID == id {
					known = true
					break
				}
			}
			if !known {
				return fmt.Errorf("decision references unknown candidate %s", id)
			}
		}
	}
	return nil
}

// AllRejected reports whether every verdict is REJECT.
func (d Decision) AllRejected() bool {
	for _, cd := range d {
		if cd.Kind != DecisionReject {
			return false
		}
	}
	return len(d) > 0
}
