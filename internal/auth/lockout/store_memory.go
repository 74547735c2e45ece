package lockout

import (
	"context"
	"sync"
	"time"

	"culturecrm/pkg/platform/sentinel"
)

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// InMemoryStore is a mutex-guarded lockout store for tests and deployments
// without Redis.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, sentinel.ErrNotFound
	}
	record := entry.record
	return &record, nil
}

func (s *InMemoryStore) Put(_ context.Context, key string, record Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{record: record, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
