package lockout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"culturecrm/pkg/platform/sentinel"
)

const keyPrefix = "login_lockout:"

// RedisStore keeps lockout records in Redis so the lock holds across
// instances. Expiry rides on the key TTL.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get lockout record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode lockout record: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, record Record, ttl time.Duration) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode lockout record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store lockout record: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete lockout record: %w", err)
	}
	return nil
}
