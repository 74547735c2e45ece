package handler

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
	activityservice "culturecrm/internal/activity/service"
	activitystore "culturecrm/internal/activity/store"
	"culturecrm/internal/auth/service"
	"culturecrm/internal/auth/store/session"
	"culturecrm/internal/auth/token"
	authmw "culturecrm/pkg/platform/middleware/auth"
	"culturecrm/pkg/platform/middleware/metadata"
	"culturecrm/pkg/platform/middleware/requesttime"
)

type AuthHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	accounts := accountstore.NewInMemory()
	accountSvc := accountservice.New(accounts)
	activitySvc := activityservice.New(activitystore.NewInMemory())
	issuer := token.NewIssuer("test-signing-key", "culturecrm-test")
	authSvc := service.New(accountSvc, session.NewInMemory(), activitySvc, issuer)

	_, err := accountSvc.Create(context.Background(), accountservice.CreateParams{
		Email:     "amina@example.org",
		FirstName: "Amina",
		Password:  "open sesame",
	})
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(authSvc, logger)

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

	r := chi.NewRouter()
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.Authenticate(resolver, logger))
		h.RegisterAuthenticated(r)
	})
	s.router = r
}

func (s *AuthHandlerSuite) do(method, path string, payload any, token string) *httptest.ResponseRecorder {
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

func (s *AuthHandlerSuite) login(email, password string) (LoginResponse, int) {
	rec := s.do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")

	var resp LoginResponse
	if rec.Code == http.StatusOK {
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	}
	return resp, rec.Code
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("valid credentials return a token", func() {
		resp, code := s.login("amina@example.org", "open sesame")
		s.Require().Equal(http.StatusOK, code)
		s.NotEmpty(resp.Token)
		s.Equal("Amina", resp.FullName)
		s.False(resp.IsStaff)
	})

	s.Run("email is case-insensitive", func() {
		_, code := s.login("AMINA@Example.org", "open sesame")
		s.Equal(http.StatusOK, code)
	})

	s.Run("wrong password is unauthorized", func() {
		_, code := s.login("amina@example.org", "nope")
		s.Equal(http.StatusUnauthorized, code)
	})

	s.Run("missing fields are a validation failure", func() {
		_, code := s.login("", "")
		s.Equal(http.StatusBadRequest, code)
	})
}

func (s *AuthHandlerSuite) TestLogout() {
	resp, code := s.login("amina@example.org", "open sesame")
	s.Require().Equal(http.StatusOK, code)

	rec := s.do(http.MethodPost, "/auth/logout", nil, resp.Token)
	s.Require().Equal(http.StatusOK, rec.Code)

	s.Run("the token no longer works", func() {
		rec := s.do(http.MethodPost, "/auth/logout", nil, resp.Token)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("logout without a token is unauthorized", func() {
		rec := s.do(http.MethodPost, "/auth/logout", nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
