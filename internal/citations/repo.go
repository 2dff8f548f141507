package citations

import "context"

// Ledger is the append-only citation store. Record is idempotent on the
// deterministic citation ID; re-recording the same provenance is a no-op.
type Ledger interface {
	Record(ctx context.Context, citation Citation) error
	ListByRecord(ctx context.Context, recordID string) ([]Citation, error)
	ListByDocument(ctx context.Context, fingerprint string) ([]Citation, error)
}
