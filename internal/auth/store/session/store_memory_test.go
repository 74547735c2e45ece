package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"culturecrm/internal/auth/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *SessionStoreSuite) newSession(ttl time.Duration) *models.Session {
	return models.NewSession(id.NewSessionID(), id.NewAccountID(), false,
		"Chrome on Linux", "203.0.113.9", time.Now(), ttl)
}

func (s *SessionStoreSuite) TestLookup() {
	s.Run("returns stored session", func() {
		session := s.newSession(time.Hour)
		s.Require().NoError(s.store.Create(context.Background(), session))

		found, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().NoError(err)
		s.Equal(session.AccountID, found.AccountID)
		s.Equal(session.Device, found.Device)
	})

	s.Run("unknown session is not found", func() {
		_, err := s.store.FindByID(context.Background(), id.NewSessionID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired session is not found", func() {
		session := s.newSession(-time.Minute)
		s.Require().NoError(s.store.Create(context.Background(), session))

		_, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SessionStoreSuite) TestTouch() {
	session := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(context.Background(), session))

	later := session.LastSeenAt.Add(5 * time.Minute)
	s.Require().NoError(s.store.Touch(context.Background(), session.ID, later))

	found, err := s.store.FindByID(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Equal(later, found.LastSeenAt)

	// Timestamps never move backwards.
	s.Require().NoError(s.store.Touch(context.Background(), session.ID, later.Add(-time.Minute)))
	found, err = s.store.FindByID(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Equal(later, found.LastSeenAt)
}

func (s *SessionStoreSuite) TestRevocation() {
	s.Run("revoked session disappears", func() {
		session := s.newSession(time.Hour)
		s.Require().NoError(s.store.Create(context.Background(), session))

		s.Require().NoError(s.store.Revoke(context.Background(), session.ID))

		_, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("revoking twice is a no-op", func() {
		session := s.newSession(time.Hour)
		s.Require().NoError(s.store.Create(context.Background(), session))
		s.Require().NoError(s.store.Revoke(context.Background(), session.ID))
		s.Require().NoError(s.store.Revoke(context.Background(), session.ID))
	})

	s.Run("revoke all removes every session for the account", func() {
		accountID := id.NewAccountID()
		var sessions []*models.Session
		for i := 0; i < 3; i++ {
			session := models.NewSession(id.NewSessionID(), accountID, false, "", "", time.Now(), time.Hour)
			s.Require().NoError(s.store.Create(context.Background(), session))
			sessions = append(sessions, session)
		}
		other := s.newSession(time.Hour)
		s.Require().NoError(s.store.Create(context.Background(), other))

		s.Require().NoError(s.store.RevokeAllForAccount(context.Background(), accountID))

		for _, session := range sessions {
			_, err := s.store.FindByID(context.Background(), session.ID)
			s.Require().ErrorIs(err, sentinel.ErrNotFound)
		}
		_, err := s.store.FindByID(context.Background(), other.ID)
		s.Require().NoError(err, "other accounts keep their sessions")
	})
}
