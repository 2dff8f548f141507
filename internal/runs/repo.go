package runs

import "context"

// CheckpointStore persists run snapshots. Save is called at every state
// transition so a crashed process can pick a run back up from its last
// durable state.
type CheckpointStore interface {
	Save(ctx context.Context, run Run) error
	Load(ctx context.Context, scope, runID string) (Run, error)
	FindActiveByFingerprint(ctx context.Context, fingerprint string) (Run, bool, error)
	ListByScope(ctx context.Context, scope string, limit, offset int) ([]Run, error)
}
