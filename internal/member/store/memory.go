package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	accountmodels "culturecrm/internal/account/models"
	interestmodels "culturecrm/internal/interest/models"
	"culturecrm/internal/member/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

// AccountLookup resolves accounts for free-text search over name and email.
// The postgres store does this with a join; the memory store asks the
// directory record by record.
type AccountLookup interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
}

// InMemory is the mutex-guarded member store used by tests and by
// deployments without a database.
//
// Execute holds the store mutex across validate and mutate, which serializes
// lifecycle transitions per record the same way the postgres store's
// SELECT ... FOR UPDATE does.
type InMemory struct {
	mu        sync.Mutex
	members   map[id.MemberID]*models.Member
	byAccount map[id.AccountID]id.MemberID
	accounts  AccountLookup
}

func NewInMemory(accounts AccountLookup) *InMemory {
	return &InMemory{
		members:   make(map[id.MemberID]*models.Member),
		byAccount: make(map[id.AccountID]id.MemberID),
		accounts:  accounts,
	}
}

// Create stores a new member profile; one profile per account.
func (s *InMemory) Create(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAccount[member.AccountID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := cloneMember(member)
	s.members[member.ID] = cp
	s.byAccount[member.AccountID] = member.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneMember(member), nil
}

func (s *InMemory) FindByAccount(_ context.Context, accountID id.AccountID) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	memberID, ok := s.byAccount[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneMember(s.members[memberID]), nil
}

// Execute runs validate then mutate on the member while holding the record
// lock, and returns the updated member. The validate error is returned
// unchanged so services can translate it.
func (s *InMemory) Execute(_ context.Context, memberID id.MemberID,
	validate func(*models.Member) error, mutate func(*models.Member)) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(member); err != nil {
		return nil, err
	}
	mutate(member)
	return cloneMember(member), nil
}

// AddInterest associates an interest, reporting whether the association is
// new. Adding an already-held interest is a no-op.
func (s *InMemory) AddInterest(_ context.Context, memberID id.MemberID, name interestmodels.Name) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if member.HasInterest(name) {
		return false, nil
	}
	member.Interests = append(member.Interests, name)
	return true, nil
}

// RemoveInterest drops an association, reporting whether it existed.
func (s *InMemory) RemoveInterest(_ context.Context, memberID id.MemberID, name interestmodels.Name) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	for i, have := range member.Interests {
		if have == name {
			member.Interests = append(member.Interests[:i], member.Interests[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Search returns members matching the query, newest application first.
func (s *InMemory) Search(ctx context.Context, query models.SearchQuery) ([]*models.Member, error) {
	s.mu.Lock()
	candidates := make([]*models.Member, 0, len(s.members))
	for _, member := range s.members {
		candidates = append(candidates, cloneMember(member))
	}
	s.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DateApplied.After(candidates[j].DateApplied)
	})

	var out []*models.Member
	for _, member := range candidates {
		ok, err := s.matches(ctx, member, query)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, member)
		}
	}

	if query.Offset > 0 {
		if query.Offset >= len(out) {
			return nil, nil
		}
		out = out[query.Offset:]
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// DeleteByAccount removes the member profile owned by the account, mirroring
// the database's ON DELETE CASCADE.
func (s *InMemory) DeleteByAccount(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	memberID, ok := s.byAccount[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.members, memberID)
	delete(s.byAccount, accountID)
	return nil
}

func (s *InMemory) matches(ctx context.Context, member *models.Member, query models.SearchQuery) (bool, error) {
	if query.Status != "" && member.Status != query.Status {
		return false, nil
	}
	if query.Interest != "" && !member.HasInterest(query.Interest) {
		return false, nil
	}
	if query.AppliedFrom != nil && member.DateApplied.Before(*query.AppliedFrom) {
		return false, nil
	}
	if query.AppliedTo != nil && member.DateApplied.After(*query.AppliedTo) {
		return false, nil
	}
	if query.Query == "" {
		return true, nil
	}

	needle := strings.ToLower(query.Query)
	if strings.Contains(strings.ToLower(member.Bio), needle) {
		return true, nil
	}
	if s.accounts != nil {
		account, err := s.accounts.FindByID(ctx, member.AccountID)
		if err == nil {
			haystack := strings.ToLower(account.FullName() + " " + account.Email)
			if strings.Contains(haystack, needle) {
				return true, nil
			}
		}
	}
	return false, nil
}

func cloneMember(member *models.Member) *models.Member {
	cp := *member
	cp.Interests = append([]interestmodels.Name(nil), member.Interests...)
	if member.DateApproved != nil {
		t := *member.DateApproved
		cp.DateApproved = &t
	}
	if member.ApprovedBy != nil {
		a := *member.ApprovedBy
		cp.ApprovedBy = &a
	}
	return &cp
}
