package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Account is a login identity in the account directory. Member profiles hold
// a non-owning reference to exactly one account; deleting the account
// cascade-deletes the profile.
type Account struct {
	ID           id.AccountID `json:"id"`
	Email        string       `json:"email"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	PasswordHash string       `json:"-"`
	IsStaff      bool         `json:"is_staff"`
	CreatedAt    time.Time    `json:"created_at"`
}

// FullName returns the display name used in listings and audit descriptions.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NewAccount constructs an account record. The password hash is produced by
// the service layer; the model only enforces identity invariants.
func NewAccount(accountID id.AccountID, email, firstName, lastName, passwordHash string, isStaff bool, now time.Time) (*Account, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "first name cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &Account{
		ID:           accountID,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
		CreatedAt:    now,
	}, nil
}

// NormalizeEmail lowercases and trims an email so uniqueness checks are
// case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects malformed or oversized addresses.
func ValidateEmail(email string) error {
	if !govalidator.StringLength(email, "1", "255") || !govalidator.IsEmail(email) {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid email address")
	}
	return nil
}
