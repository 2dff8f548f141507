package recordstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reconcile-backend/internal/roles"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]storedRecord // scope -> recordID -> record
	now     func() time.Time
}

type storedRecord struct {
	fields       FieldValues
	lastModified int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]map[string]storedRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) ListByScope(ctx context.Context, scope string) ([]roles.StoredRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []roles.StoredRole
	for id, rec := range s.records[scope] {
		role := roles.StoredRole{
			ID:           id,
			Company:      rec.fields[roles.FieldCompany],
			Title:        rec.fields[roles.FieldTitle],
			LastModified: rec.lastModified,
		}
		role.StartDate, _ = roles.ParseYearMonth(rec.fields[roles.FieldStartDate])
		role.EndDate, _ = roles.ParseYearMonth(rec.fields[roles.FieldEndDate])
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) WriteFields(ctx context.Context, scope, recordID string, fields FieldValues) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.records[scope]
	if byID == nil {
		byID = make(map[string]storedRecord)
		s.records[scope] = byID
	}

	if recordID == "" {
		recordID = uuid.NewString()
		merged := FieldValues{}
		for k, v := range fields {
			merged[k] = v
		}
		byID[recordID] = storedRecord{fields: merged, lastModified: s.now().UnixMilli()}
		return recordID, nil
	}

	rec, ok := byID[recordID]
	if !ok {
		return "", &WriteError{RecordID: recordID, Err: ErrRecordNotFound}
	}
	for k, v := range fields {
		rec.fields[k] = v
	}
	rec.lastModified = s.now().UnixMilli()
	byID[recordID] = rec
	return recordID, nil
}

// Fields returns a copy of a record's fields. Test helper.
func (s *MemoryStore) Fields(scope, recordID string) (FieldValues, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[scope][recordID]
	if !ok {
		return nil, false
	}
	out := FieldValues{}
	for k, v := range rec.fields {
		out[k] = v
	}
	return out, true
}
