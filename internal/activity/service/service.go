// Package service records and queries the activity log: the append-only
// audit trail of logins, lifecycle decisions and profile edits.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"culturecrm/internal/activity/models"
	"culturecrm/pkg/requestcontext"

	dErrors "culturecrm/pkg/domain-errors"
	id "culturecrm/pkg/domain"
)

type EntryStore interface {
	Append(ctx context.Context, entry models.Entry) error
	List(ctx context.Context, filter models.Filter) ([]models.Entry, error)
}

// Service is the single write path into the activity log.
type Service struct {
	entries EntryStore
	logger  *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(entries EntryStore, opts ...Option) *Service {
	s := &Service{entries: entries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends an entry, stamping ID, timestamp and client IP from the
// request context. Failures are returned to the caller; lifecycle operations
// treat a failed audit write as a failed operation.
func (s *Service) Record(ctx context.Context, entry models.Entry) error {
	entry.ID = uuid.NewString()
	entry.Timestamp = requestcontext.Now(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = requestcontext.ClientIP(ctx)
	}

	if err := s.entries.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record activity")
	}

	if s.logger != nil {
		attrs := []any{
			"log_type", "audit",
			"action", string(entry.Action),
			"request_id", requestcontext.RequestID(ctx),
		}
		if entry.AccountID != nil {
			attrs = append(attrs, "account_id", entry.AccountID.String())
		}
		if entry.TargetMember != nil {
			attrs = append(attrs, "target_member", entry.TargetMember.String())
		}
		s.logger.InfoContext(ctx, string(entry.Action), attrs...)
	}
	return nil
}

// List returns entries newest first, applying the filter. Limit defaults to
// 100 and is capped at 500 so an unbounded admin query cannot drag the whole
// table through the API.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity")
	}
	return entries, nil
}

// ListForMember returns the audit trail scoped to one member.
func (s *Service) ListForMember(ctx context.Context, memberID id.MemberID, limit int) ([]models.Entry, error) {
	return s.List(ctx, models.Filter{TargetMember: &memberID, Limit: limit})
}
