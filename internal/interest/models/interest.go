package models

import (
	"strings"
	"time"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Name is one of the fixed engagement categories members pick from.
// The set is closed; new categories are a product decision, not user input.
type Name string

const (
	NameCaring       Name = "caring"
	NameSharing      Name = "sharing"
	NameCreating     Name = "creating"
	NameExperiencing Name = "experiencing"
	NameWorking      Name = "working"
)

// AllNames returns the catalog's enumerated names in display order.
func AllNames() []Name {
	return []Name{NameCaring, NameSharing, NameCreating, NameExperiencing, NameWorking}
}

// ParseName validates a raw string against the enumerated set.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	switch n {
	case NameCaring, NameSharing, NameCreating, NameExperiencing, NameWorking:
		return n, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown interest %q", s)
}

// Display returns the human-readable form of the name.
func (n Name) Display() string {
	if n == "" {
		return ""
	}
	return strings.ToUpper(string(n[:1])) + string(n[1:])
}

// Interest is a catalog entry: an enumerated name plus descriptive metadata.
//
// Invariants:
//   - Name is one of the enumerated set and unique within the catalog
//   - CreatedAt is immutable after construction
//   - Entries are never deleted while any member references them
type Interest struct {
	ID          id.InterestID `json:"id"`
	Name        Name          `json:"name"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewInterest constructs a catalog entry, enforcing the name invariant.
func NewInterest(interestID id.InterestID, name Name, description string, now time.Time) (*Interest, error) {
	if _, err := ParseName(string(name)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "interest name must be one of the enumerated set")
	}
	return &Interest{
		ID:          interestID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}, nil
}
