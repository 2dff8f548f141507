package citations

import (
	"time"

	"reconcile-backend/internal/roles"
)

// Citation is one append-only provenance row: a field value, the document
// it was read from, and where in the document it appeared.
type Citation struct {
	ID            string           `json:"id"`
	Fingerprint   string           `json:"fingerprint"`
	Span          roles.SourceSpan `json:"span"`
	Field         string           `json:"field"`
	ExtractedText string           `json:"extractedText"`
	RecordID      string           `json:"recordId,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}
