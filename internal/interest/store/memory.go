package store

import (
	"context"
	"sync"

	"culturecrm/internal/interest/models"
	"culturecrm/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded catalog store used by tests and by deployments
// without a database.
type InMemory struct {
	mu     sync.RWMutex
	byName map[models.Name]*models.Interest
	order  []models.Name
}

func NewInMemory() *InMemory {
	return &InMemory{byName: make(map[models.Name]*models.Interest)}
}

// Create adds a catalog entry; the name must be unused.
func (s *InMemory) Create(_ context.Context, interest *models.Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[interest.Name]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *interest
	s.byName[interest.Name] = &cp
	s.order = append(s.order, interest.Name)
	return nil
}

// FindByName returns the entry for a name, or sentinel.ErrNotFound.
func (s *InMemory) FindByName(_ context.Context, name models.Name) (*models.Interest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	interest, ok := s.byName[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *interest
	return &cp, nil
}

// List returns all catalog entries in insertion order.
func (s *InMemory) List(_ context.Context) ([]*models.Interest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Interest, 0, len(s.order))
	for _, name := range s.order {
		cp := *s.byName[name]
		out = append(out, &cp)
	}
	return out, nil
}
