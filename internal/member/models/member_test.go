package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

func newTestMember(t *testing.T) *Member {
	t.Helper()
	member, err := NewMember(id.NewMemberID(), id.NewAccountID(), "I run a community print studio.", "07700 900123", time.Now().UTC())
	require.NoError(t, err)
	return member
}

func TestNewMember(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("starts pending with no approval record", func(t *testing.T) {
		member, err := NewMember(id.NewMemberID(), id.NewAccountID(), "  bio  ", "", now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, member.Status)
		assert.Nil(t, member.DateApproved)
		assert.Nil(t, member.ApprovedBy)
		assert.Equal(t, now, member.DateApplied)
		assert.Equal(t, "bio", member.Bio)
	})

	t.Run("requires an account", func(t *testing.T) {
		_, err := NewMember(id.NewMemberID(), id.AccountID{}, "bio", "", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("requires a bio", func(t *testing.T) {
		_, err := NewMember(id.NewMemberID(), id.NewAccountID(), "   ", "", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestMemberApproval(t *testing.T) {
	t.Run("pending can be approved", func(t *testing.T) {
		member := newTestMember(t)
		require.NoError(t, member.CanApprove())

		approver := id.NewAccountID()
		approvedAt := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
		member.ApplyApproval(approver, approvedAt)

		assert.Equal(t, StatusApproved, member.Status)
		require.NotNil(t, member.DateApproved)
		assert.Equal(t, approvedAt, *member.DateApproved)
		require.NotNil(t, member.ApprovedBy)
		assert.Equal(t, approver, *member.ApprovedBy)
	})

	t.Run("approved cannot be approved again", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyApproval(id.NewAccountID(), time.Now().UTC())
		err := member.CanApprove()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejected cannot be approved", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyRejection(time.Now().UTC())
		require.Error(t, member.CanApprove())
	})

	t.Run("inactive goes through reactivate, not approve", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyApproval(id.NewAccountID(), time.Now().UTC())
		member.ApplyDeactivation(time.Now().UTC())
		require.Error(t, member.CanApprove())
		require.NoError(t, member.CanReactivate())
	})
}

func TestMemberRejection(t *testing.T) {
	t.Run("pending can be rejected", func(t *testing.T) {
		member := newTestMember(t)
		require.NoError(t, member.CanReject())
		member.ApplyRejection(time.Now().UTC())
		assert.Equal(t, StatusRejected, member.Status)
		assert.Nil(t, member.DateApproved)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyRejection(time.Now().UTC())
		require.Error(t, member.CanApprove())
		require.Error(t, member.CanReject())
		require.Error(t, member.CanDeactivate())
		require.Error(t, member.CanReactivate())
	})

	t.Run("approved cannot be rejected", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyApproval(id.NewAccountID(), time.Now().UTC())
		require.Error(t, member.CanReject())
	})
}

func TestMemberDeactivationCycle(t *testing.T) {
	member := newTestMember(t)
	approver := id.NewAccountID()
	approvedAt := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	member.ApplyApproval(approver, approvedAt)

	require.NoError(t, member.CanDeactivate())
	member.ApplyDeactivation(approvedAt.Add(24 * time.Hour))
	assert.Equal(t, StatusInactive, member.Status)

	// The original approval record survives the round trip.
	require.NotNil(t, member.DateApproved)
	assert.Equal(t, approvedAt, *member.DateApproved)

	require.NoError(t, member.CanReactivate())
	member.ApplyReactivation(approvedAt.Add(48 * time.Hour))
	assert.Equal(t, StatusApproved, member.Status)
	require.NotNil(t, member.DateApproved)
	assert.Equal(t, approvedAt, *member.DateApproved)
	require.NotNil(t, member.ApprovedBy)
	assert.Equal(t, approver, *member.ApprovedBy)

	t.Run("pending cannot be deactivated or reactivated", func(t *testing.T) {
		fresh := newTestMember(t)
		require.Error(t, fresh.CanDeactivate())
		require.Error(t, fresh.CanReactivate())
	})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusInactive, false},
		{StatusApproved, StatusInactive, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusApproved, false},
		{StatusInactive, StatusApproved, true},
		{StatusInactive, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}
