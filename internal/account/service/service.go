// Package service implements the account directory: login identities,
// credential checks and profile updates. Membership state lives elsewhere;
// this package knows nothing about lifecycle status or interests.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"culturecrm/internal/account/models"
	"culturecrm/pkg/platform/sentinel"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, accountID id.AccountID) error
}

// ProfileCascade removes dependent member data when an account is deleted.
// Postgres enforces this with ON DELETE CASCADE; the hook keeps the memory
// stores consistent with that behavior.
type ProfileCascade interface {
	DeleteByAccount(ctx context.Context, accountID id.AccountID) error
}

// Service is the concrete account directory the membership core consumes.
type Service struct {
	accounts AccountStore
	cascade  ProfileCascade
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithProfileCascade(cascade ProfileCascade) Option {
	return func(s *Service) { s.cascade = cascade }
}

func New(accounts AccountStore, opts ...Option) *Service {
	s := &Service{accounts: accounts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries validated registration identity input. Any non-empty
// password is accepted; there is deliberately no strength policy.
type CreateParams struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	IsStaff   bool
}

// Create registers a new account with a bcrypt-hashed credential.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Account, error) {
	if strings.TrimSpace(params.Password) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password is required").
			WithField("password", "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account, err := models.NewAccount(id.NewAccountID(), params.Email, params.FirstName,
		params.LastName, string(hash), params.IsStaff, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists").
				WithField("email", "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account created",
			"account_id", account.ID.String(),
			"is_staff", account.IsStaff,
			"request_id", requestcontext.RequestID(ctx))
	}
	return account, nil
}

// FindByID loads an account by ID.
func (s *Service) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

// FindByEmail loads an account by email (case-insensitive).
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

// Authenticate verifies a credential pair and returns the matching account.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Burn a comparison anyway so response timing does not reveal
			// whether the email exists.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinvalid"), []byte(password))
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	return account, nil
}

// UpdateProfileParams carries identity fields a member may change.
type UpdateProfileParams struct {
	FirstName string
	LastName  string
	Email     string
}

// UpdateProfile changes name and email. A changed email is re-checked for
// uniqueness by the store.
func (s *Service) UpdateProfile(ctx context.Context, accountID id.AccountID, params UpdateProfileParams) (*models.Account, error) {
	account, err := s.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	email := models.NormalizeEmail(params.Email)
	if err := models.ValidateEmail(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid email address").
			WithField("email", "invalid email address")
	}
	firstName := strings.TrimSpace(params.FirstName)
	if firstName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first name is required").
			WithField("first_name", "first name is required")
	}

	account.Email = email
	account.FirstName = firstName
	account.LastName = strings.TrimSpace(params.LastName)

	if err := s.accounts.Update(ctx, account); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists").
				WithField("email", "an account with this email already exists")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
		}
	}
	return account, nil
}

// Delete removes an account and cascades to its member profile.
func (s *Service) Delete(ctx context.Context, accountID id.AccountID) error {
	if s.cascade != nil {
		if err := s.cascade.DeleteByAccount(ctx, accountID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete member profile")
		}
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete account")
	}
	return nil
}
