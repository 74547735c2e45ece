package store

import (
	"context"
	"sync"

	"culturecrm/internal/member/models"

	id "culturecrm/pkg/domain"
)

// HistoryInMemory is the append-only interest history used by tests and
// database-less deployments. Entries are never updated or deleted.
type HistoryInMemory struct {
	mu       sync.Mutex
	byMember map[id.MemberID][]models.InterestHistoryEntry
}

func NewHistoryInMemory() *HistoryInMemory {
	return &HistoryInMemory{byMember: make(map[id.MemberID][]models.InterestHistoryEntry)}
}

func (s *HistoryInMemory) Append(_ context.Context, entry models.InterestHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMember[entry.MemberID] = append(s.byMember[entry.MemberID], entry)
	return nil
}

// ListByMember returns a member's history, newest change first. Entries with
// the same timestamp keep their append order.
func (s *HistoryInMemory) ListByMember(_ context.Context, memberID id.MemberID) ([]models.InterestHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.byMember[memberID]
	out := make([]models.InterestHistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
