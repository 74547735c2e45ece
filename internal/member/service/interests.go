package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	activitymodels "culturecrm/internal/activity/models"
	interestmodels "culturecrm/internal/interest/models"
	"culturecrm/internal/member/models"
	"culturecrm/pkg/platform/sentinel"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// AddInterest associates an interest with a member and records the change.
// Adding an interest the member already holds is a silent no-op: no history
// entry, no audit entry.
func (s *Service) AddInterest(ctx context.Context, memberID id.MemberID, name interestmodels.Name, notes string) error {
	actor, err := s.requireStaff(ctx, &memberID)
	if err != nil {
		return err
	}
	changed, err := s.changeInterests(ctx, memberID, &actor, []interestmodels.Name{name}, nil, notes)
	if err != nil {
		return err
	}
	if changed > 0 {
		return s.recordInterestsUpdated(ctx, actor, memberID)
	}
	return nil
}

// RemoveInterest drops an association and records the change. Removing an
// interest the member does not hold is a silent no-op.
func (s *Service) RemoveInterest(ctx context.Context, memberID id.MemberID, name interestmodels.Name, notes string) error {
	actor, err := s.requireStaff(ctx, &memberID)
	if err != nil {
		return err
	}
	changed, err := s.changeInterests(ctx, memberID, &actor, nil, []interestmodels.Name{name}, notes)
	if err != nil {
		return err
	}
	if changed > 0 {
		return s.recordInterestsUpdated(ctx, actor, memberID)
	}
	return nil
}

// ReplaceInterests reconciles the member's interest set against the requested
// one. Only the differences are written, so unchanged interests produce no
// history noise and a no-op replacement produces no audit entry.
func (s *Service) ReplaceInterests(ctx context.Context, memberID id.MemberID, req models.UpdateInterestsRequest) (*models.Member, error) {
	actor, err := s.requireStaff(ctx, &memberID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	want := make(map[interestmodels.Name]struct{}, len(req.InterestNames()))
	for _, name := range req.InterestNames() {
		want[name] = struct{}{}
	}

	var adds, removals []interestmodels.Name
	for name := range want {
		if !current.HasInterest(name) {
			adds = append(adds, name)
		}
	}
	for _, name := range current.Interests {
		if _, keep := want[name]; !keep {
			removals = append(removals, name)
		}
	}

	changed, err := s.changeInterests(ctx, memberID, &actor, adds, removals, req.Notes)
	if err != nil {
		return nil, err
	}
	if changed > 0 {
		if err := s.recordInterestsUpdated(ctx, actor, memberID); err != nil {
			return nil, err
		}
	}
	return s.GetMember(ctx, memberID)
}

// changeInterests applies adds then removals in one unit of work, appending a
// history entry for every association that actually changed. It returns the
// number of changes made.
func (s *Service) changeInterests(ctx context.Context, memberID id.MemberID, changedBy *id.AccountID,
	adds, removals []interestmodels.Name, notes string) (int, error) {
	changed := 0
	addsDone, removalsDone := 0, 0
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		addsDone, removalsDone = 0, 0
		for _, name := range adds {
			if _, err := s.catalog.FindByName(ctx, name); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "interest catalog lookup failed")
			}
			added, err := s.members.AddInterest(ctx, memberID, name)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "member not found")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add interest")
			}
			if !added {
				continue
			}
			if err := s.appendHistory(ctx, memberID, name, models.HistoryAdded, changedBy, notes); err != nil {
				return err
			}
			changed++
			addsDone++
		}
		for _, name := range removals {
			removed, err := s.members.RemoveInterest(ctx, memberID, name)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "member not found")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove interest")
			}
			if !removed {
				continue
			}
			if err := s.appendHistory(ctx, memberID, name, models.HistoryRemoved, changedBy, notes); err != nil {
				return err
			}
			changed++
			removalsDone++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		for i := 0; i < addsDone; i++ {
			s.metrics.IncrementInterestChange(string(models.HistoryAdded))
		}
		for i := 0; i < removalsDone; i++ {
			s.metrics.IncrementInterestChange(string(models.HistoryRemoved))
		}
	}
	return changed, nil
}

func (s *Service) appendHistory(ctx context.Context, memberID id.MemberID, name interestmodels.Name,
	action models.HistoryAction, changedBy *id.AccountID, notes string) error {
	err := s.history.Append(ctx, models.InterestHistoryEntry{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		Interest:  name,
		Action:    action,
		ChangedBy: changedBy,
		Timestamp: requestcontext.Now(ctx),
		Notes:     notes,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record interest history")
	}
	return nil
}

func (s *Service) recordInterestsUpdated(ctx context.Context, actor id.AccountID, memberID id.MemberID) error {
	return s.activity.Record(ctx, activitymodels.Entry{
		AccountID:    &actor,
		Action:       activitymodels.ActionInterestsUpdated,
		TargetMember: &memberID,
		Description:  "member interests updated",
	})
}
