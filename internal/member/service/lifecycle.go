package service

import (
	"context"
	"errors"

	activitymodels "culturecrm/internal/activity/models"
	"culturecrm/internal/member/models"
	"culturecrm/pkg/platform/sentinel"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Approve moves a pending application to approved and records the deciding
// staff account. Only staff may approve; only pending members can be.
func (s *Service) Approve(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	return s.transition(ctx, memberID, "approve", activitymodels.ActionApproval, "approved",
		func(m *models.Member) error { return m.CanApprove() },
		func(actor id.AccountID, m *models.Member) { m.ApplyApproval(actor, requestcontext.Now(ctx)) },
	)
}

// Reject declines a pending application. Rejected is terminal.
func (s *Service) Reject(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	return s.transition(ctx, memberID, "reject", activitymodels.ActionRejection, "rejected",
		func(m *models.Member) error { return m.CanReject() },
		func(_ id.AccountID, m *models.Member) { m.ApplyRejection(requestcontext.Now(ctx)) },
	)
}

// Deactivate switches an approved membership off, keeping its approval record.
func (s *Service) Deactivate(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	return s.transition(ctx, memberID, "deactivate", activitymodels.ActionDeactivation, "deactivated",
		func(m *models.Member) error { return m.CanDeactivate() },
		func(_ id.AccountID, m *models.Member) { m.ApplyDeactivation(requestcontext.Now(ctx)) },
	)
}

// Reactivate returns an inactive membership to approved without touching the
// original approval timestamp or approver.
func (s *Service) Reactivate(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	return s.transition(ctx, memberID, "reactivate", activitymodels.ActionReactivation, "reactivated",
		func(m *models.Member) error { return m.CanReactivate() },
		func(_ id.AccountID, m *models.Member) { m.ApplyReactivation(requestcontext.Now(ctx)) },
	)
}

/// BulkResult reports how a bulk decision went: members that were not in a
// state the decision applies to are skipped, not failed.
type BulkResult struct {
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Members   []id.MemberID `json:"members"`
}

// BulkApprove approves every pending member in ids and skips the rest.
func (s *Service) BulkApprove(ctx context.Context, ids []id.MemberID) (*BulkResult, error) {
	return s.bulk(ctx, ids, s.Approve)
}

// BulkReject rejects every pending member in ids and skips the rest.
func (s *Service) BulkReject(ctx context.Context, ids []id.MemberID) (*BulkResult, error) {
	return s.bulk(ctx, ids, s.Reject)
}

func (s *Service) bulk(ctx context.Context, ids []id.MemberID,
	op func(context.Context, id.MemberID) (*models.Member, error)) (*BulkResult, error) {
	if _, err := s.requireStaff(ctx, nil); err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for _, memberID := range ids {
		_, err := op(ctx, memberID)
		switch {
		case err == nil:
			result.Processed++
			result.Members = append(result.Members, memberID)
		case dErrors.HasCode(err, dErrors.CodeInvalidTransition), dErrors.HasCode(err, dErrors.CodeNotFound):
			result.Skipped++
		default:
			return nil, err
		}
	}
	return result, nil
}

// transition runs one lifecycle change end to end: staff check, locked
// validate-and-mutate, audit entry, metric.
func (s *Service) transition(ctx context.Context, memberID id.MemberID,
	name string, auditAction activitymodels.Action, decision string,
	validate func(*models.Member) error, mutate func(id.AccountID, *models.Member)) (*models.Member, error) {

	ctx, span := s.tracer.Start(ctx, "member."+name)
	defer span.End()

	actor, err := s.requireStaff(ctx, &memberID)
	if err != nil {
		return nil, err
	}

	member, err := s.members.Execute(ctx, memberID, validate,
		func(m *models.Member) { mutate(actor, m) })
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
			return nil, dErrors.New(dErrors.CodeInvalidTransition, err.Error())
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+name+" member")
		}
	}

	err = s.activity.Record(ctx, activitymodels.Entry{
		AccountID:    &actor,
		Action:       auditAction,
		TargetMember: &memberID,
		Description:  "member " + decision,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementDecision(decision)
	}
	s.log(ctx, "member "+decision,
		"member_id", memberID.String(),
		"actor", actor.String(),
		"request_id", requestcontext.RequestID(ctx))
	return member, nil
}

// requireStaff resolves the acting staff account from the request context.
// A non-staff caller gets a forbidden error and an access_denied audit entry.
func (s *Service) requireStaff(ctx context.Context, target *id.MemberID) (id.AccountID, error) {
	actor := requestcontext.AccountID(ctx)
	if actor.IsNil() {
		return id.AccountID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !requestcontext.IsStaff(ctx) {
		_ = s.activity.Record(ctx, activitymodels.Entry{
			AccountID:    &actor,
			Action:       activitymodels.ActionAccessDenied,
			TargetMember: target,
			Description:  "staff-only operation refused",
		})
		return id.AccountID{}, dErrors.New(dErrors.CodeForbidden, "staff access required")
	}
	return actor, nil
}
