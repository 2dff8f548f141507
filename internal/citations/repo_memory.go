package citations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryLedger is an in-memory Ledger for tests and local development.
type MemoryLedger struct {
	mu   sync.RWMutex
	rows map[string]Citation
}

var _ Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{rows: make(map[string]Citation)}
}

func (l *MemoryLedger) Record(ctx context.Context, citation Citation) error {
	if citation.Fingerprint == "" || citation.Field == "" {
		return ErrInvalidCitation
	}
	if citation.ID == "" {
		citation.ID = DeterministicID(citation.Fingerprint, citation.Span, citation.Field)
	}
	if citation.CreatedAt.IsZero() {
		citation.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.rows[citation.ID]; exists {
		return nil
	}
	l.rows[citation.ID] = citation
	return nil
}

func (l *MemoryLedger) ListByRecord(ctx context.Context, recordID string) ([]Citation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Citation
	for _, row := range l.rows {
		if row.RecordID == recordID {
			out = append(out, row)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (l *MemoryLedger) ListByDocument(ctx context.Context, fingerprint string) ([]Citation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Citation
	for _, row := range l.rows {
		if row.Fingerprint == fingerprint {
			out = append(out, row)
		}
	}
	sortByCreation(out)
	return out, nil
}

// Len reports the number of stored citations. Useful in tests asserting
// idempotence.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}

func sortByCreation(rows []Citation) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
}
