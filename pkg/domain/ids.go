// Package domain holds typed identifiers shared across features.
//
// IDs are distinct types over uuid.UUID so the compiler rejects passing an
// account where a member is expected. Parse* functions are the only way to
// build an ID from untrusted input; they reject empty, malformed and nil
// UUIDs at the trust boundary.
package domain

import (
	"github.com/google/uuid"

	dErrors "culturecrm/pkg/domain-errors"
)

// AccountID identifies a login account in the account directory.
type AccountID uuid.UUID

// MemberID identifies a member profile.
type MemberID uuid.UUID

// InterestID identifies an interest catalog entry.
type InterestID uuid.UUID

// SessionID identifies an authenticated session.
type SessionID uuid.UUID

func NewAccountID() AccountID   { return AccountID(uuid.New()) }
func NewMemberID() MemberID     { return MemberID(uuid.New()) }
func NewInterestID() InterestID { return InterestID(uuid.New()) }
func NewSessionID() SessionID   { return SessionID(uuid.New()) }

func (id AccountID) String() string  { return uuid.UUID(id).String() }
func (id MemberID) String() string   { return uuid.UUID(id).String() }
func (id InterestID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string  { return uuid.UUID(id).String() }

func (id AccountID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id MemberID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id InterestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// Defined types do not inherit uuid.UUID's marshaling methods, so without
// these an ID would encode as a JSON byte array on the wire.

func (id AccountID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id MemberID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id InterestID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *MemberID) UnmarshalText(text []byte) error {
	parsed, err := ParseMemberID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *InterestID) UnmarshalText(text []byte) error {
	parsed, err := ParseInterestID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SessionID) UnmarshalText(text []byte) error {
	parsed, err := ParseSessionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseAccountID parses an account ID from its string form.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

// ParseMemberID parses a member ID from its string form.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s, "member id")
	return MemberID(u), err
}

// ParseInterestID parses an interest ID from its string form.
func ParseInterestID(s string) (InterestID, error) {
	u, err := parseUUID(s, "interest id")
	return InterestID(u), err
}

// ParseSessionID parses a session ID from its string form.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "malformed "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be the nil uuid")
	}
	return u, nil
}
