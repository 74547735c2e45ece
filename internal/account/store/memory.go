package store

import (
	"context"
	"sync"

	"culturecrm/internal/account/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

// InMemory is the mutex-guarded account store used by tests.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[id.AccountID]*models.Account
	idByMail map[string]id.AccountID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[id.AccountID]*models.Account),
		idByMail: make(map[string]id.AccountID),
	}
}

// Create stores a new account; the email must be unused.
func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(account.Email)
	if _, taken := s.idByMail[email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *account
	s.byID[account.ID] = &cp
	s.idByMail[email] = account.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byID[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.idByMail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[accountID]
	return &cp, nil
}

// Update replaces the stored record. A changed email must remain unique.
func (s *InMemory) Update(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[account.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	newEmail := models.NormalizeEmail(account.Email)
	oldEmail := models.NormalizeEmail(current.Email)
	if newEmail != oldEmail {
		if _, taken := s.idByMail[newEmail]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.idByMail, oldEmail)
		s.idByMail[newEmail] = account.ID
	}
	cp := *account
	s.byID[account.ID] = &cp
	return nil
}

// Delete removes the account. Cascade deletion of the member profile is
// orchestrated by the service; postgres enforces it with ON DELETE CASCADE.
func (s *InMemory) Delete(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.idByMail, models.NormalizeEmail(account.Email))
	delete(s.byID, accountID)
	return nil
}
