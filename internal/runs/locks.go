package runs

import (
	"sync"
	"time"
)

// fingerprintLocks serializes submissions per document fingerprint within
// this process. Acquire fails fast instead of queueing: a submission racing
// an in-flight one for the same document should be told so, not parked.
type fingerprintLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newFingerprintLocks() *fingerprintLocks {
	return &fingerprintLocks{locks: make(map[string]chan struct{})}
}

// acquire takes the lock for a fingerprint, waiting up to timeout.
// It reports whether the lock was obtained.
func (f *fingerprintLocks) acquire(fingerprint string, timeout time.Duration) bool {
	f.mu.Lock()
	ch, ok := f.locks[fingerprint]
	if !ok {
		ch = make(chan struct{}, 1)
		f.locks[fingerprint] = ch
	}
	f.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

func (f *fingerprintLocks) release(fingerprint string) {
	f.mu.Lock()
	ch, ok := f.locks[fingerprint]
	f.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-ch:
	default:
	}
}
