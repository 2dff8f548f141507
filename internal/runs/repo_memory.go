package runs

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory CheckpointStore for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

var _ CheckpointStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Run)}
}

func (s *MemoryStore) Save(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, scope, runID string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok || run.Scope != scope {
		return Run{}, ErrRunNotFound
	}
	return run, nil
}

func (s *MemoryStore) FindActiveByFingerprint(ctx context.Context, fingerprint string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, run := range s.runs {
		if run.Fingerprint == fingerprint && !run.State.Terminal() {
			return run, true, nil
		}
	}
	return Run{}, false, nil
}

func (s *MemoryStore) ListByScope(ctx context.Context, scope string, limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Run
	for _, run := range s.runs {
		if run.Scope == scope {
			all = append(all, run)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
