package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// MemoryStore is a single-process Store used when no redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	policy  Policy
	now     func() time.Time
	records map[string]*memoryRecord
}

func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{policy: policy, now: time.Now, records: make(map[string]*memoryRecord)}
}

func (s *MemoryStore) Locked(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[key]
	return ok && s.now().Before(r.lockedUntil), nil
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r, ok := s.records[key]
	if !ok {
		r = &memoryRecord{windowStart: now}
		s.records[key] = r
	}
	if now.Sub(r.windowStart) >= s.policy.Window {
		r.failures = 0
		r.windowStart = now
	}

	r.failures++
	if r.failures < s.policy.MaxAttempts {
		return false, nil
	}

	r.failures = 0
	r.windowStart = now
	r.lockedUntil = now.Add(s.policy.LockFor)
	return true, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

