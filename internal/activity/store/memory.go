package store

import (
	"context"
	"sync"

	"culturecrm/internal/activity/models"
)

// InMemory keeps activity entries in append order behind a mutex.
type InMemory struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// Append records an entry. Entries are immutable once stored.
func (s *InMemory) Append(_ context.Context, entry models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns matching entries newest first.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if !matches(entry, filter) {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(entry models.Entry, filter models.Filter) bool {
	if filter.Action != "" && entry.Action != filter.Action {
		return false
	}
	if filter.AccountID != nil {
		if entry.AccountID == nil || *entry.AccountID != *filter.AccountID {
			return false
		}
	}
	if filter.TargetMember != nil {
		if entry.TargetMember == nil || *entry.TargetMember != *filter.TargetMember {
			return false
		}
	}
	return true
}
