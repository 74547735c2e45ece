// Package service implements login, logout and bearer-token resolution.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	accountmodels "culturecrm/internal/account/models"
	activitymodels "culturecrm/internal/activity/models"
	"culturecrm/internal/auth/device"
	"culturecrm/internal/auth/models"
	"culturecrm/internal/auth/token"
	"culturecrm/pkg/platform/sentinel"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

const defaultSessionTTL = 24 * time.Hour

// Authenticator verifies credentials against the account directory.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*accountmodels.Account, error)
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error
	Revoke(ctx context.Context, sessionID id.SessionID) error
	RevokeAllForAccount(ctx context.Context, accountID id.AccountID) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, entry activitymodels.Entry) error
}

// LoginGuard throttles repeated failed logins per email/IP pair.
type LoginGuard interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Clear(ctx context.Context, email, ip string) error
}

// Service manages login sessions and the tokens that reference them.
type Service struct {
	accounts   Authenticator
	sessions   SessionStore
	activity   ActivityRecorder
	tokens     *token.Issuer
	guard      LoginGuard
	sessionTTL time.Duration
	logger     *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithLoginGuard enables failed-login throttling.
func WithLoginGuard(guard LoginGuard) Option {
	return func(s *Service) { s.guard = guard }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func New(accounts Authenticator, sessions SessionStore, activity ActivityRecorder,
	tokens *token.Issuer, opts ...Option) *Service {
	s := &Service{
		accounts:   accounts,
		sessions:   sessions,
		activity:   activity,
		tokens:     tokens,
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is a successful login: the bearer token and its session.
type LoginResult struct {
	Token   string
	Session *models.Session
	Account *accountmodels.Account
}

// Login verifies credentials, opens a session and issues a token for it.
// Both outcomes land in the activity log with IP and device summary.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	deviceSummary := device.ParseUserAgent(requestcontext.UserAgent(ctx))
	clientIP := requestcontext.ClientIP(ctx)

	if s.guard != nil {
		if err := s.guard.Check(ctx, email, clientIP); err != nil {
			return nil, err
		}
	}

	account, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			if s.guard != nil {
				_ = s.guard.RecordFailure(ctx, email, clientIP)
			}
			_ = s.activity.Record(ctx, activitymodels.Entry{
				Action:      activitymodels.ActionLoginFailed,
				Description: "failed login for " + email + " from " + deviceSummary,
			})
		}
		return nil, err
	}
	if s.guard != nil {
		// Best effort; a failed clear must not block a valid login.
		_ = s.guard.Clear(ctx, email, clientIP)
	}

	now := requestcontext.Now(ctx)
	session := models.NewSession(id.NewSessionID(), account.ID, account.IsStaff,
		deviceSummary, requestcontext.ClientIP(ctx), now, s.sessionTTL)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	signed, err := s.tokens.Issue(account.ID, session.ID, now, s.sessionTTL)
	if err != nil {
		return nil, err
	}

	err = s.activity.Record(ctx, activitymodels.Entry{
		AccountID:   &account.ID,
		Action:      activitymodels.ActionLogin,
		Description: "logged in from " + deviceSummary,
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "login",
			"account_id", account.ID.String(),
			"session_id", session.ID.String(),
			"device", deviceSummary,
			"request_id", requestcontext.RequestID(ctx))
	}
	return &LoginResult{Token: signed, Session: session, Account: account}, nil
}

// Logout revokes the calling session. Revoking an already-dead session still
// succeeds.
func (s *Service) Logout(ctx context.Context) error {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	accountID := requestcontext.AccountID(ctx)
	entry := activitymodels.Entry{
		Action:      activitymodels.ActionLogout,
		Description: "logged out",
	}
	if !accountID.IsNil() {
		entry.AccountID = &accountID
	}
	return s.activity.Record(ctx, entry)
}

// ResolvedSession is what the HTTP middleware needs to populate the request
// context.
type ResolvedSession struct {
	SessionID id.SessionID
	AccountID id.AccountID
	IsStaff   bool
}

// Resolve validates a bearer token against its server-side session. The
// session must still exist; a revoked session invalidates the token even
// before its signed expiry.
func (s *Service) Resolve(ctx context.Context, tokenString string) (ResolvedSession, error) {
	accountID, sessionID, err := s.tokens.Validate(tokenString)
	if err != nil {
		return ResolvedSession{}, err
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ResolvedSession{}, dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
		}
		return ResolvedSession{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.AccountID != accountID {
		return ResolvedSession{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	// Best effort; a failed touch must not fail the request.
	_ = s.sessions.Touch(ctx, sessionID, requestcontext.Now(ctx))

	return ResolvedSession{
		SessionID: session.ID,
		AccountID: session.AccountID,
		IsStaff:   session.IsStaff,
	}, nil
}

// RevokeAllForAccount removes every live session for an account; called when
// the account is deleted.
func (s *Service) RevokeAllForAccount(ctx context.Context, accountID id.AccountID) error {
	if err := s.sessions.RevokeAllForAccount(ctx, accountID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke sessions")
	}
	return nil
}
