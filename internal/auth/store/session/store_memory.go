// Package session persists login sessions. Sessions are short-lived and
// keyed by ID; the redis store leans on key TTLs for expiry, the memory
// store checks expiry on read.
package session

import (
	"context"
	"sync"
	"time"

	"culturecrm/internal/auth/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

// InMemoryStore is the mutex-guarded session store used by tests and
// deployments without redis.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[id.SessionID]*models.Session
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !session.Active(time.Now()) {
		delete(s.sessions, sessionID)
		return nil, sentinel.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

// Touch advances the session's last-seen timestamp.
func (s *InMemoryStore) Touch(_ context.Context, sessionID id.SessionID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if at.After(session.LastSeenAt) {
		session.LastSeenAt = at
	}
	return nil
}

// Revoke removes the session. Revoking an unknown session is a no-op so
// logout stays idempotent.
func (s *InMemoryStore) Revoke(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// RevokeAllForAccount removes every session belonging to the account. Used
// when an account is deleted.
func (s *InMemoryStore) RevokeAllForAccount(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sessionID, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, sessionID)
		}
	}
	return nil
}
