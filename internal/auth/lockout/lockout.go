// Package lockout throttles credential guessing: repeated failed logins for
// the same email/IP pair trip a temporary hard lock.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"culturecrm/pkg/platform/sentinel"
	"culturecrm/pkg/requestcontext"

	dErrors "culturecrm/pkg/domain-errors"
)

const (
	defaultMaxFailures  = 5
	defaultWindow       = 15 * time.Minute
	defaultLockDuration = 15 * time.Minute
)

// Record tracks failed attempts for one email/IP pair.
type Record struct {
	Failures    int        `json:"failures"`
	WindowStart time.Time  `json:"window_start"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// LockedAt reports whether the record holds an active lock at t.
func (r *Record) LockedAt(t time.Time) bool {
	return r.LockedUntil != nil && t.Before(*r.LockedUntil)
}

// Store persists lockout records with a bounded lifetime.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, record Record, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Service applies the lockout policy.
type Service struct {
	store        Store
	maxFailures  int
	window       time.Duration
	lockDuration time.Duration
	logger       *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithPolicy overrides the default threshold and durations.
func WithPolicy(maxFailures int, window, lockDuration time.Duration) Option {
	return func(s *Service) {
		if maxFailures > 0 {
			s.maxFailures = maxFailures
		}
		if window > 0 {
			s.window = window
		}
		if lockDuration > 0 {
			s.lockDuration = lockDuration
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		maxFailures:  defaultMaxFailures,
		window:       defaultWindow,
		lockDuration: defaultLockDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check fails with a rate_limited error while the pair is locked. A missing
// record means no restriction.
func (s *Service) Check(ctx context.Context, email, ip string) error {
	record, err := s.get(ctx, key(email, ip))
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	now := requestcontext.Now(ctx)
	if record.LockedAt(now) {
		retryAfter := int(record.LockedUntil.Sub(now).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts").
			WithField("retry_after_seconds", strconv.Itoa(retryAfter))
	}
	return nil
}

// RecordFailure counts a failed attempt, opening the lock when the threshold
// is reached within the window.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) error {
	k := key(email, ip)
	record, err := s.get(ctx, k)
	if err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	if record == nil || now.Sub(record.WindowStart) > s.window {
		record = &Record{WindowStart: now}
	}
	record.Failures++

	if record.Failures >= s.maxFailures && !record.LockedAt(now) {
		until := now.Add(s.lockDuration)
		record.LockedUntil = &until
		if s.logger != nil {
			s.logger.WarnContext(ctx, "login lockout triggered",
				"ip", ip,
				"failures", record.Failures,
				"locked_until", until,
			)
		}
	}

	ttl := s.window
	if s.lockDuration > ttl {
		ttl = s.lockDuration
	}
	if err := s.store.Put(ctx, k, *record, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login failure")
	}
	return nil
}

// Clear forgets the pair's failures after a successful login.
func (s *Service) Clear(ctx context.Context, email, ip string) error {
	if err := s.store.Delete(ctx, key(email, ip)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear login failures")
	}
	return nil
}

func (s *Service) get(ctx context.Context, k string) (*Record, error) {
	record, err := s.store.Get(ctx, k)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lockout record")
	}
	return record, nil
}

func key(email, ip string) string {
	return email + "|" + ip
}
