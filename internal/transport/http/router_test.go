package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	accountservice "culturecrm/internal/account/service"
	accountstore "culturecrm/internal/account/store"
	activityhandler "culturecrm/internal/activity/handler"
	activityservice "culturecrm/internal/activity/service"
	activitystore "culturecrm/internal/activity/store"
	authhandler "culturecrm/internal/auth/handler"
	authservice "culturecrm/internal/auth/service"
	"culturecrm/internal/auth/store/session"
	"culturecrm/internal/auth/token"
	interesthandler "culturecrm/internal/interest/handler"
	intereststore "culturecrm/internal/interest/store"
	memberhandler "culturecrm/internal/member/handler"
	memberservice "culturecrm/internal/member/service"
	memberstore "culturecrm/internal/member/store"
	authmw "culturecrm/pkg/platform/middleware/auth"
)

// RouterSuite runs the whole HTTP stack against memory stores: real
// middleware, real token resolution, real services.
type RouterSuite struct {
	suite.Suite
	router chi.Router
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	accounts := accountstore.NewInMemory()
	members := memberstore.NewInMemory(accounts)
	history := memberstore.NewHistoryInMemory()
	interests := intereststore.NewInMemory()
	intereststore.Seed(interests)
	sessions := session.NewInMemory()
	activity := activitystore.NewInMemory()

	accountSvc := accountservice.New(accounts)
	activitySvc := activityservice.New(activity)
	memberSvc := memberservice.New(members, history, interests, accountSvc, activitySvc)
	issuer := token.NewIssuer("router-test-key", "culturecrm-test")
	authSvc := authservice.New(accountSvc, sessions, activitySvc, issuer)

	_, err := accountSvc.Create(context.Background(), accountservice.CreateParams{
		Email:     "staff@example.org",
		FirstName: "Sigrid",
		Password:  "staff-password",
		IsStaff:   true,
	})
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := authmw.ResolverFunc(func(ctx context.Context, tokenString string) (authmw.Session, error) {
		resolved, err := authSvc.Resolve(ctx, tokenString)
		if err != nil {
			return authmw.Session{}, err
		}
		return authmw.Session{
			SessionID: resolved.SessionID,
			AccountID: resolved.AccountID,
			IsStaff:   resolved.IsStaff,
		}, nil
	})

	s.router = NewRouter(Dependencies{
		Auth:      authhandler.New(authSvc, logger),
		Members:   memberhandler.New(memberSvc, logger),
		Interests: interesthandler.New(interests, logger),
		Activity:  activityhandler.New(activitySvc, logger),
		Resolver:  resolver,
		Logger:    logger,
	}, Config{SiteTitle: "Together Culture CRM"})
}

func (s *RouterSuite) do(method, path string, payload any, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) login(email, password string) string {
	rec := s.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token
}

func (s *RouterSuite) TestIndexAndHealth() {
	rec := s.do(http.MethodGet, "/", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var index map[string]string
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&index))
	s.Equal("Together Culture CRM", index["service"])

	rec = s.do(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", nil, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestApplicationLifecycleEndToEnd() {
	// A visitor checks the catalog and applies.
	rec := s.do(http.MethodGet, "/interests", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/auth/register", map[string]any{
		"first_name":       "Amina",
		"last_name":        "Diallo",
		"email":            "amina@example.org",
		"password":         "open sesame",
		"password_confirm": "open sesame",
		"bio":              "Printmaker",
		"interests":        []string{"creating"},
		"terms_accepted":   true,
	}, "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Member struct {
			ID string `json:"id"`
		} `json:"member"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&created))

	// Staff logs in and approves through the admin area.
	staffToken := s.login("staff@example.org", "staff-password")

	rec = s.do(http.MethodPost, "/admin/members/"+created.Member.ID+"/approve", nil, staffToken)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	// The approved member sees their own profile.
	memberToken := s.login("amina@example.org", "open sesame")
	rec = s.do(http.MethodGet, "/me", nil, memberToken)
	s.Require().Equal(http.StatusOK, rec.Code)

	var me struct {
		Status string `json:"status"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&me))
	s.Equal("approved", me.Status)

	// The decision is in the activity log.
	rec = s.do(http.MethodGet, "/admin/activity?action=approval", nil, staffToken)
	s.Require().Equal(http.StatusOK, rec.Code)

	var log struct {
		Entries []struct {
			TargetMember string `json:"target_member"`
		} `json:"entries"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&log))
	s.Require().Len(log.Entries, 1)
	s.Equal(created.Member.ID, log.Entries[0].TargetMember)
}

func (s *RouterSuite) TestAdminAreaIsGated() {
	s.Run("no token is unauthorized", func() {
		rec := s.do(http.MethodGet, "/admin/members", nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("member token is forbidden", func() {
		rec := s.do(http.MethodPost, "/auth/register", map[string]any{
			"first_name":       "Jonas",
			"last_name":        "Berg",
			"email":            "jonas@example.org",
			"password":         "password123",
			"password_confirm": "password123",
			"bio":              "Woodworker",
			"interests":        []string{"working"},
			"terms_accepted":   true,
		}, "")
		s.Require().Equal(http.StatusCreated, rec.Code)

		memberToken := s.login("jonas@example.org", "password123")
		rec = s.do(http.MethodGet, "/admin/members", nil, memberToken)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("logout invalidates the token for the member surface", func() {
		staffToken := s.login("staff@example.org", "staff-password")
		rec := s.do(http.MethodPost, "/auth/logout", nil, staffToken)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodGet, "/admin/members", nil, staffToken)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
