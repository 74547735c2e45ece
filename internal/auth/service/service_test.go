package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	accountservice "culturecrm/internal/account/service"
	accountstore "culturecrm/internal/account/store"
	activitymodels "culturecrm/internal/activity/models"
	activityservice "culturecrm/internal/activity/service"
	activitystore "culturecrm/internal/activity/store"
	"culturecrm/internal/auth/lockout"
	"culturecrm/internal/auth/store/session"
	"culturecrm/internal/auth/token"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type AuthServiceSuite struct {
	suite.Suite
	sessions  *session.InMemoryStore
	activity  *activitystore.InMemory
	service   *Service
	accountID id.AccountID
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	accounts := accountstore.NewInMemory()
	s.sessions = session.NewInMemory()
	s.activity = activitystore.NewInMemory()

	accountSvc := accountservice.New(accounts)
	activitySvc := activityservice.New(s.activity)
	issuer := token.NewIssuer("test-signing-key", "culturecrm-test")

	s.service = New(accountSvc, s.sessions, activitySvc, issuer,
		WithSessionTTL(time.Hour))

	account, err := accountSvc.Create(context.Background(), accountservice.CreateParams{
		Email:     "amina@example.org",
		FirstName: "Amina",
		Password:  "correct horse",
		IsStaff:   true,
	})
	s.Require().NoError(err)
	s.accountID = account.ID
}

func (s *AuthServiceSuite) requestCtx() context.Context {
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.9", chromeOnMac)
	return requestcontext.WithTime(ctx, time.Now())
}

func (s *AuthServiceSuite) TestLogin() {
	s.Run("valid credentials open a session and issue a token", func() {
		result, err := s.service.Login(s.requestCtx(), "amina@example.org", "correct horse")
		s.Require().NoError(err)
		s.NotEmpty(result.Token)
		s.Equal(s.accountID, result.Session.AccountID)
		s.True(result.Session.IsStaff)
		s.Contains(result.Session.Device, "Chrome")

		entries, err := s.activity.List(context.Background(), activitymodels.Filter{Action: activitymodels.ActionLogin, Limit: 10})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(s.accountID, *entries[0].AccountID)
		s.Equal("203.0.113.9", entries[0].IPAddress)
	})

	s.Run("wrong password is unauthorized and audited", func() {
		_, err := s.service.Login(s.requestCtx(), "amina@example.org", "wrong")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		entries, err := s.activity.List(context.Background(), activitymodels.Filter{Action: activitymodels.ActionLoginFailed, Limit: 10})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Nil(entries[0].AccountID)
		s.Contains(entries[0].Description, "amina@example.org")
	})

	s.Run("unknown email gets the same error as wrong password", func() {
		_, errUnknown := s.service.Login(s.requestCtx(), "ghost@example.org", "whatever")
		_, errWrong := s.service.Login(s.requestCtx(), "amina@example.org", "wrong")
		s.Require().Error(errUnknown)
		s.Require().Error(errWrong)
		s.Equal(errWrong.Error(), errUnknown.Error())
	})
}

func (s *AuthServiceSuite) TestLoginLockout() {
	guard := lockout.New(lockout.NewInMemory(), lockout.WithPolicy(3, 10*time.Minute, 15*time.Minute))
	s.service = New(s.service.accounts, s.sessions, s.service.activity, s.service.tokens,
		WithSessionTTL(time.Hour), WithLoginGuard(guard))

	for i := 0; i < 3; i++ {
		_, err := s.service.Login(s.requestCtx(), "amina@example.org", "wrong")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}

	s.Run("further attempts are throttled, even with the right password", func() {
		_, err := s.service.Login(s.requestCtx(), "amina@example.org", "correct horse")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	})

	s.Run("the lock only holds for the locked email and IP", func() {
		ctx := requestcontext.WithTime(
			requestcontext.WithClientMetadata(context.Background(), "198.51.100.7", chromeOnMac),
			time.Now())
		_, err := s.service.Login(ctx, "amina@example.org", "correct horse")
		s.Require().NoError(err)
	})

	s.Run("a successful login clears the counter", func() {
		guard2 := lockout.New(lockout.NewInMemory(), lockout.WithPolicy(3, 10*time.Minute, 15*time.Minute))
		svc := New(s.service.accounts, s.sessions, s.service.activity, s.service.tokens,
			WithSessionTTL(time.Hour), WithLoginGuard(guard2))

		for i := 0; i < 2; i++ {
			_, err := svc.Login(s.requestCtx(), "amina@example.org", "wrong")
			s.Require().Error(err)
		}
		_, err := svc.Login(s.requestCtx(), "amina@example.org", "correct horse")
		s.Require().NoError(err)

		// Two fresh failures sit below the threshold again.
		for i := 0; i < 2; i++ {
			_, err := svc.Login(s.requestCtx(), "amina@example.org", "wrong")
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		}
	})
}

func (s *AuthServiceSuite) TestResolve() {
	result, err := s.service.Login(s.requestCtx(), "amina@example.org", "correct horse")
	s.Require().NoError(err)

	s.Run("valid token resolves to its session", func() {
		resolved, err := s.service.Resolve(s.requestCtx(), result.Token)
		s.Require().NoError(err)
		s.Equal(result.Session.ID, resolved.SessionID)
		s.Equal(s.accountID, resolved.AccountID)
		s.True(resolved.IsStaff)
	})

	s.Run("garbage token is unauthorized", func() {
		_, err := s.service.Resolve(s.requestCtx(), "not-a-token")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("token signed with another key is unauthorized", func() {
		otherIssuer := token.NewIssuer("different-key", "culturecrm-test")
		forged, err := otherIssuer.Issue(s.accountID, result.Session.ID, time.Now(), time.Hour)
		s.Require().NoError(err)

		_, err = s.service.Resolve(s.requestCtx(), forged)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("revoked session invalidates an unexpired token", func() {
		s.Require().NoError(s.sessions.Revoke(context.Background(), result.Session.ID))

		_, err := s.service.Resolve(s.requestCtx(), result.Token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *AuthServiceSuite) TestLogout() {
	result, err := s.service.Login(s.requestCtx(), "amina@example.org", "correct horse")
	s.Require().NoError(err)

	ctx := requestcontext.WithSessionID(
		requestcontext.WithAccountID(s.requestCtx(), s.accountID), result.Session.ID)

	s.Require().NoError(s.service.Logout(ctx))

	_, err = s.service.Resolve(s.requestCtx(), result.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Run("logout is idempotent", func() {
		s.Require().NoError(s.service.Logout(ctx))
	})

	s.Run("logout without a session is unauthorized", func() {
		err := s.service.Logout(s.requestCtx())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	entries, err := s.activity.List(context.Background(), activitymodels.Filter{Action: activitymodels.ActionLogout, Limit: 10})
	s.Require().NoError(err)
	s.NotEmpty(entries)
}
