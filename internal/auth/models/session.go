package models

import (
	"time"

	id "culturecrm/pkg/domain"
)

// Session is the server-side record behind a bearer token. Tokens are only
// honored while their session exists and has not expired or been revoked, so
// logout takes effect immediately regardless of the token's own expiry.
type Session struct {
	ID         id.SessionID `json:"id"`
	AccountID  id.AccountID `json:"account_id"`
	IsStaff    bool         `json:"is_staff"`
	Device     string       `json:"device"`
	IPAddress  string       `json:"ip_address,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
	LastSeenAt time.Time    `json:"last_seen_at"`
}

// NewSession creates a session valid for ttl from now.
func NewSession(sessionID id.SessionID, accountID id.AccountID, isStaff bool,
	device, ipAddress string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:         sessionID,
		AccountID:  accountID,
		IsStaff:    isStaff,
		Device:     device,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		LastSeenAt: now,
	}
}

// Active reports whether the session is still honored at t.
func (s *Session) Active(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}
