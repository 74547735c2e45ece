package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountmodels "culturecrm/internal/account/models"
	accountservice "culturecrm/internal/account/service"
	activitymodels "culturecrm/internal/activity/models"
	"culturecrm/internal/member/models"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// RegistrationResult is what a successful application produces.
type RegistrationResult struct {
	Account *accountmodels.Account
	Member  *models.Member
}

// Register processes a membership application: account, pending profile,
// initial interests and their history entries commit or roll back as one
// unit. A duplicate email surfaces as a conflict on the email field.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*RegistrationResult, error) {
	ctx, span := s.tracer.Start(ctx, "member.Register")
	defer span.End()
	if s.metrics != nil {
		defer s.metrics.ObserveRegister(time.Now())
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Validation happens before any write, so a rejected application leaves
	// no account behind.
	var result RegistrationResult
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		account, err := s.accounts.Create(ctx, accountservice.CreateParams{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Password:  req.Password,
		})
		if err != nil {
			return err
		}

		member, err := models.NewMember(id.NewMemberID(), account.ID, req.Bio, req.PhoneNumber, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		member.ProfilePicture = req.ProfilePicture
		if err := s.members.Create(ctx, member); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create member profile")
		}

		for _, name := range req.InterestNames() {
			if _, err := s.catalog.FindByName(ctx, name); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "interest catalog lookup failed")
			}
			added, err := s.members.AddInterest(ctx, member.ID, name)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add interest")
			}
			if !added {
				continue
			}
			member.Interests = append(member.Interests, name)
			err = s.history.Append(ctx, models.InterestHistoryEntry{
				ID:        uuid.NewString(),
				MemberID:  member.ID,
				Interest:  name,
				Action:    models.HistoryAdded,
				Timestamp: requestcontext.Now(ctx),
				Notes:     "selected at registration",
			})
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record interest history")
			}
		}

		err = s.activity.Record(ctx, activitymodels.Entry{
			AccountID:    &account.ID,
			Action:       activitymodels.ActionRegistration,
			TargetMember: &member.ID,
			Description:  "membership application submitted",
		})
		if err != nil {
			return err
		}

		result = RegistrationResult{Account: account, Member: member}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistration()
	}
	s.log(ctx, "membership application received",
		"member_id", result.Member.ID.String(),
		"account_id", result.Account.ID.String(),
		"interests", len(result.Member.Interests),
		"request_id", requestcontext.RequestID(ctx))
	return &result, nil
}
