package models

import (
	"strings"
	"time"

	interestmodels "culturecrm/internal/interest/models"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Member is the aggregate root for a membership application and its life
// after approval.
//
// Invariants:
//   - Exactly one member per account; deleting the account deletes the member
//   - Status transitions follow the lifecycle in status.go and nothing else
//   - DateApplied is immutable after construction
//   - DateApproved is set exactly once, on the first transition to approved,
//     and survives later deactivation and reactivation
//   - ApprovedBy records the staff account of that first approval
//   - Interests may be empty only transiently; registration requires at
//     least one
type Member struct {
	ID             id.MemberID           `json:"id"`
	AccountID      id.AccountID          `json:"account_id"`
	Status         Status                `json:"status"`
	Bio            string                `json:"bio"`
	PhoneNumber    string                `json:"phone_number,omitempty"`
	ProfilePicture string                `json:"profile_picture,omitempty"`
	Interests      []interestmodels.Name `json:"interests"`
	DateApplied    time.Time             `json:"date_applied"`
	DateApproved   *time.Time            `json:"date_approved,omitempty"`
	ApprovedBy     *id.AccountID         `json:"approved_by,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// NewMember constructs a pending application.
func NewMember(memberID id.MemberID, accountID id.AccountID, bio, phoneNumber string, now time.Time) (*Member, error) {
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member requires an account")
	}
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "bio cannot be empty")
	}
	return &Member{
		ID:          memberID,
		AccountID:   accountID,
		Status:      StatusPending,
		Bio:         bio,
		PhoneNumber: strings.TrimSpace(phoneNumber),
		DateApplied: now,
		UpdatedAt:   now,
	}, nil
}

// HasInterest reports whether the member is currently associated with name.
func (m *Member) HasInterest(name interestmodels.Name) bool {
	for _, have := range m.Interests {
		if have == name {
			return true
		}
	}
	return false
}

// CanApprove checks the approve transition precondition.
// Use with ApplyApproval in Execute callbacks so the store holds the record
// lock across validate and mutate.
func (m *Member) CanApprove() error {
	// Approve is only defined for pending applications; inactive members
	// return to approved through the separate reactivate operation.
	if m.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot approve member in status %q", m.Status)
	}
	return nil
}

// ApplyApproval transitions to approved and records who approved and when.
// DateApproved and ApprovedBy are only written on the first approval.
func (m *Member) ApplyApproval(approver id.AccountID, now time.Time) {
	m.Status = StatusApproved
	if m.DateApproved == nil {
		m.DateApproved = &now
		m.ApprovedBy = &approver
	}
	m.UpdatedAt = now
}

// CanReject checks the reject transition precondition.
func (m *Member) CanReject() error {
	if !m.Status.CanTransitionTo(StatusRejected) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot reject member in status %q", m.Status)
	}
	return nil
}

// ApplyRejection transitions to rejected. Rejected is terminal.
func (m *Member) ApplyRejection(now time.Time) {
	m.Status = StatusRejected
	m.UpdatedAt = now
}

// CanDeactivate checks the deactivate transition precondition.
func (m *Member) CanDeactivate() error {
	if !m.Status.CanTransitionTo(StatusInactive) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot deactivate member in status %q", m.Status)
	}
	return nil
}

// ApplyDeactivation transitions to inactive. The original approval record
// (DateApproved, ApprovedBy) is preserved.
func (m *Member) ApplyDeactivation(now time.Time) {
	m.Status = StatusInactive
	m.UpdatedAt = now
}

// CanReactivate checks the reactivate transition precondition.
func (m *Member) CanReactivate() error {
	if m.Status != StatusInactive {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot reactivate member in status %q", m.Status)
	}
	return nil
}

// ApplyReactivation returns an inactive member to approved, keeping the
// original approval timestamp and approver.
func (m *Member) ApplyReactivation(now time.Time) {
	m.Status = StatusApproved
	m.UpdatedAt = now
}
