package citations

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"reconcile-backend/internal/roles"
)

// DeterministicID derives the citation identity from the document
// fingerprint, the span, and the field name. Re-recording the same
// provenance always produces the same ID, which is what makes the
// ledger idempotent.
func DeterministicID(fingerprint string, span roles.SourceSpan, field string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%s|%s", fingerprint, span.PageNumber, span.Paragraph, span.LocationNote, field)
	return hex.EncodeToString(h.Sum(nil))
}
