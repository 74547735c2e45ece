package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"culturecrm/internal/auth/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

type RedisStoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.store = NewRedis(client)
}

func (s *RedisStoreSuite) newSession(ttl time.Duration) *models.Session {
	return models.NewSession(id.NewSessionID(), id.NewAccountID(), true,
		"Firefox on Linux", "203.0.113.9", time.Now(), ttl)
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	session := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.AccountID, found.AccountID)
	s.True(found.IsStaff)
	s.Equal("Firefox on Linux", found.Device)
}

func (s *RedisStoreSuite) TestCreateRejectsExpired() {
	err := s.store.Create(context.Background(), s.newSession(-time.Minute))
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *RedisStoreSuite) TestExpiryViaTTL() {
	ctx := context.Background()
	session := s.newSession(time.Minute)
	s.Require().NoError(s.store.Create(ctx, session))

	s.mini.FastForward(2 * time.Minute)

	_, err := s.store.FindByID(ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestTouchKeepsTTL() {
	ctx := context.Background()
	session := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(ctx, session))

	later := session.LastSeenAt.Add(10 * time.Minute)
	s.Require().NoError(s.store.Touch(ctx, session.ID, later))

	found, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.WithinDuration(later, found.LastSeenAt, time.Second)

	// Touch must not reset the key to live forever.
	s.mini.FastForward(2 * time.Hour)
	_, err = s.store.FindByID(ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestRevoke() {
	ctx := context.Background()
	session := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.Revoke(ctx, session.ID))
	_, err := s.store.FindByID(ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Idempotent.
	s.Require().NoError(s.store.Revoke(ctx, session.ID))
}

func (s *RedisStoreSuite) TestRevokeAllForAccount() {
	ctx := context.Background()
	accountID := id.NewAccountID()

	var mine []*models.Session
	for i := 0; i < 3; i++ {
		session := models.NewSession(id.NewSessionID(), accountID, false, "", "", time.Now(), time.Hour)
		s.Require().NoError(s.store.Create(ctx, session))
		mine = append(mine, session)
	}
	other := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(ctx, other))

	s.Require().NoError(s.store.RevokeAllForAccount(ctx, accountID))

	for _, session := range mine {
		_, err := s.store.FindByID(ctx, session.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	}
	_, err := s.store.FindByID(ctx, other.ID)
	s.Require().NoError(err)
}
