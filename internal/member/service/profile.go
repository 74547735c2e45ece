package service

import (
	"context"
	"errors"

	accountservice "culturecrm/internal/account/service"
	activitymodels "culturecrm/internal/activity/models"
	"culturecrm/internal/member/models"
	"culturecrm/pkg/platform/sentinel"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// UpdateProfile applies the combined profile edit: identity fields on the
// account, bio and contact details on the member. Both sides commit or roll
// back together.
func (s *Service) UpdateProfile(ctx context.Context, accountID id.AccountID, req models.UpdateProfileRequest) (*models.Member, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var updated *models.Member
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.accounts.UpdateProfile(ctx, accountID, accountservice.UpdateProfileParams{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
		})
		if err != nil {
			return err
		}

		updated, err = s.members.Execute(ctx, existing.ID,
			func(*models.Member) error { return nil },
			func(m *models.Member) {
				m.Bio = req.Bio
				m.PhoneNumber = req.PhoneNumber
				m.ProfilePicture = req.ProfilePicture
				m.UpdatedAt = requestcontext.Now(ctx)
			},
		)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "member not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update member profile")
		}

		return s.activity.Record(ctx, activitymodels.Entry{
			AccountID:    &accountID,
			Action:       activitymodels.ActionProfileUpdated,
			TargetMember: &existing.ID,
			Description:  "profile updated",
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateMemberProfile is the staff edit of another member's profile. It
// resolves the member to its owning account and applies the same combined
// update.
func (s *Service) UpdateMemberProfile(ctx context.Context, memberID id.MemberID, req models.UpdateProfileRequest) (*models.Member, error) {
	if _, err := s.requireStaff(ctx, &memberID); err != nil {
		return nil, err
	}
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.UpdateProfile(ctx, member.AccountID, req)
}
