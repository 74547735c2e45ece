package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	accountmodels "culturecrm/internal/account/models"
	interestmodels "culturecrm/internal/interest/models"
	xstrings "culturecrm/pkg/platform/strings"

	dErrors "culturecrm/pkg/domain-errors"
)

// RegisterRequest carries a membership application. Interests are raw strings
// from the form; Validate resolves them against the catalog enum.
type RegisterRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm"`
	Bio             string   `json:"bio"`
	PhoneNumber     string   `json:"phone_number"`
	Interests       []string `json:"interests"`
	ProfilePicture  string   `json:"profile_picture"`
	TermsAccepted   bool     `json:"terms_accepted"`

	parsedInterests []interestmodels.Name
}

// Normalize trims whitespace and lowercases the email.
func (r *RegisterRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = accountmodels.NormalizeEmail(r.Email)
	r.Bio = strings.TrimSpace(r.Bio)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.ProfilePicture = strings.TrimSpace(r.ProfilePicture)
}

// Validate checks the application and collects field-level messages. The
// password is accepted as-is apart from presence and confirmation; there is
// deliberately no strength policy.
func (r *RegisterRequest) Validate() error {
	verr := dErrors.New(dErrors.CodeValidation, "invalid registration")
	failed := false

	if !govalidator.StringLength(r.FirstName, "1", "30") {
		verr = verr.WithField("first_name", "first name is required (at most 30 characters)")
		failed = true
	}
	if !govalidator.StringLength(r.LastName, "1", "30") {
		verr = verr.WithField("last_name", "last name is required (at most 30 characters)")
		failed = true
	}
	if !govalidator.StringLength(r.Email, "1", "255") || !govalidator.IsEmail(r.Email) {
		verr = verr.WithField("email", "a valid email address is required")
		failed = true
	}
	if r.Password == "" {
		verr = verr.WithField("password", "password is required")
		failed = true
	} else if r.Password != r.PasswordConfirm {
		verr = verr.WithField("password_confirm", "passwords do not match")
		failed = true
	}
	if r.Bio == "" {
		verr = verr.WithField("bio", "bio is required")
		failed = true
	}
	if len(r.PhoneNumber) > 20 {
		verr = verr.WithField("phone_number", "phone number must be at most 20 characters")
		failed = true
	}
	if !r.TermsAccepted {
		verr = verr.WithField("terms_accepted", "you must accept the terms and conditions")
		failed = true
	}

	names, err := parseInterestNames(r.Interests)
	if err != nil {
		verr = verr.WithField("interests", err.Error())
		failed = true
	} else if len(names) == 0 {
		verr = verr.WithField("interests", "select at least one interest")
		failed = true
	}
	r.parsedInterests = names

	if failed {
		return verr
	}
	return nil
}

// InterestNames returns the validated, deduplicated interest selection.
// Only meaningful after a successful Validate.
func (r *RegisterRequest) InterestNames() []interestmodels.Name {
	return r.parsedInterests
}

// UpdateProfileRequest carries the editable profile fields plus the account
// identity fields the original combined form updates in one submission.
type UpdateProfileRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	PhoneNumber    string `json:"phone_number"`
	ProfilePicture string `json:"profile_picture"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = accountmodels.NormalizeEmail(r.Email)
	r.Bio = strings.TrimSpace(r.Bio)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.ProfilePicture = strings.TrimSpace(r.ProfilePicture)
}

func (r *UpdateProfileRequest) Validate() error {
	verr := dErrors.New(dErrors.CodeValidation, "invalid profile update")
	failed := false

	if !govalidator.StringLength(r.FirstName, "1", "30") {
		verr = verr.WithField("first_name", "first name is required (at most 30 characters)")
		failed = true
	}
	if !govalidator.StringLength(r.Email, "1", "255") || !govalidator.IsEmail(r.Email) {
		verr = verr.WithField("email", "a valid email address is required")
		failed = true
	}
	if r.Bio == "" {
		verr = verr.WithField("bio", "bio is required")
		failed = true
	}
	if len(r.PhoneNumber) > 20 {
		verr = verr.WithField("phone_number", "phone number must be at most 20 characters")
		failed = true
	}

	if failed {
		return verr
	}
	return nil
}

// UpdateInterestsRequest replaces a member's interest set.
type UpdateInterestsRequest struct {
	Interests []string `json:"interests"`
	Notes     string   `json:"notes"`

	parsedInterests []interestmodels.Name
}

func (r *UpdateInterestsRequest) Validate() error {
	names, err := parseInterestNames(r.Interests)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "invalid interests").
			WithField("interests", err.Error())
	}
	r.parsedInterests = names
	return nil
}

func (r *UpdateInterestsRequest) InterestNames() []interestmodels.Name {
	return r.parsedInterests
}

// SearchQuery narrows admin member listings. Zero values mean no constraint.
type SearchQuery struct {
	// Query matches name, email or bio, case-insensitively.
	Query string
	// Status filters by lifecycle state.
	Status Status
	// Interest keeps only members currently holding that interest.
	Interest interestmodels.Name
	// AppliedFrom/AppliedTo bound the application date (inclusive).
	AppliedFrom *time.Time
	AppliedTo   *time.Time
	Limit       int
	Offset      int
}

func parseInterestNames(raw []string) ([]interestmodels.Name, error) {
	cleaned := xstrings.DedupeAndTrimLower(raw)
	names := make([]interestmodels.Name, 0, len(cleaned))
	for _, s := range cleaned {
		name, err := interestmodels.ParseName(s)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
