package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"culturecrm/internal/auth/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

const (
	sessionKeyPrefix = "session:"
	accountKeyPrefix = "account_sessions:"
)

// RedisStore persists sessions in redis. Expiry rides on key TTLs, so an
// expired session simply stops existing; a per-account set supports bulk
// revocation on account deletion.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func accountKey(accountID id.AccountID) string {
	return accountKeyPrefix + accountID.String()
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrInvalidState
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
	pipe.SAdd(ctx, accountKey(session.AccountID), session.ID.String())
	pipe.Expire(ctx, accountKey(session.AccountID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Touch advances the last-seen timestamp, keeping the remaining TTL.
func (s *RedisStore) Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error {
	session, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !at.After(session.LastSeenAt) {
		return nil
	}
	session.LastSeenAt = at

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Revoke deletes the session. Unknown sessions are ignored so logout is
// idempotent.
func (s *RedisStore) Revoke(ctx context.Context, sessionID id.SessionID) error {
	session, err := s.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, accountKey(session.AccountID), sessionID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAllForAccount deletes every live session belonging to the account.
func (s *RedisStore) RevokeAllForAccount(ctx context.Context, accountID id.AccountID) error {
	members, err := s.client.SMembers(ctx, accountKey(accountID)).Result()
	if err != nil {
		return fmt.Errorf("list account sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, member := range members {
		pipe.Del(ctx, sessionKeyPrefix+member)
	}
	pipe.Del(ctx, accountKey(accountID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke account sessions: %w", err)
	}
	return nil
}
