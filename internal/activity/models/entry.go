package models

import (
	"time"

	id "culturecrm/pkg/domain"
)

// Action tags an activity log entry with what happened.
type Action string

const (
	ActionLogin            Action = "login"
	ActionLoginFailed      Action = "login_failed"
	ActionLogout           Action = "logout"
	ActionRegistration     Action = "registration"
	ActionApproval         Action = "approval"
	ActionRejection        Action = "rejection"
	ActionDeactivation     Action = "deactivation"
	ActionReactivation     Action = "reactivation"
	ActionInterestsUpdated Action = "interests_updated"
	ActionProfileUpdated   Action = "profile_updated"
	ActionAccessDenied     Action = "access_denied"
	ActionContactMessage   Action = "contact_message"
)

// Entry is one append-only activity record. Entries are never mutated or
// deleted after creation.
//
// AccountID is nil for system-initiated events; TargetMember is nil when the
// action does not concern a specific member.
type Entry struct {
	ID           string        `json:"id"`
	AccountID    *id.AccountID `json:"account_id,omitempty"`
	Action       Action        `json:"action"`
	TargetMember *id.MemberID  `json:"target_member,omitempty"`
	Description  string        `json:"description"`
	IPAddress    string        `json:"ip_address,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Filter narrows activity queries. Zero values mean "no constraint".
type Filter struct {
	Action       Action
	AccountID    *id.AccountID
	TargetMember *id.MemberID
	Limit        int
}
