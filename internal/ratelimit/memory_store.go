package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local counter store for single-instance
// deployments and tests. Counters are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count    int64
	deadline time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if ok && s.now().After(e.deadline) {
		delete(s.entries, key)
		ok = false
	}

	if !ok {
		e = &memoryEntry{deadline: s.now().Add(window)}
		s.entries[key] = e
	}

	e.count++
	return e.count, nil
}

func (s *MemoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return -1, nil
	}

	ttl := e.deadline.Sub(s.now())
	if ttl <= 0 {
		delete(s.entries, key)
		return -1, nil
	}
	return ttl, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
