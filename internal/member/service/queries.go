package service

import (
	"context"
	"errors"
	"time"

	"culturecrm/internal/member/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// GetMember loads a member by ID.
func (s *Service) GetMember(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}
	return member, nil
}

// GetByAccount loads the member profile owned by an account. An account
// without a profile is a distinct, expected outcome for staff-only accounts.
func (s *Service) GetByAccount(ctx context.Context, accountID id.AccountID) (*models.Member, error) {
	member, err := s.members.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no member profile for this account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}
	return member, nil
}

// ListMembers searches members for the admin directory, newest application
// first. Limit defaults to 50 and is capped at 200.
func (s *Service) ListMembers(ctx context.Context, query models.SearchQuery) ([]*models.Member, error) {
	if _, err := s.requireStaff(ctx, nil); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		defer s.metrics.ObserveSearch(time.Now())
	}

	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status filter").
			WithField("status", "unknown status filter")
	}

	members, err := s.members.Search(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search members")
	}
	return members, nil
}

// ListInterestHistory returns a member's interest audit trail, newest first.
func (s *Service) ListInterestHistory(ctx context.Context, memberID id.MemberID) ([]models.InterestHistoryEntry, error) {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByMember(ctx, memberID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load interest history")
	}
	return entries, nil
}

// ListOwnInterestHistory returns the calling member's own audit trail.
func (s *Service) ListOwnInterestHistory(ctx context.Context, accountID id.AccountID) ([]models.InterestHistoryEntry, error) {
	member, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load interest history")
	}
	return entries, nil
}
