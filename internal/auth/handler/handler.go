// Package handler exposes login and logout over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"culturecrm/internal/auth/service"
	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/requestcontext"

	dErrors "culturecrm/pkg/domain-errors"
)

// Service defines the auth operations the handler exposes.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context) error
}

// Handler wires auth endpoints to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the login endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAuthenticated mounts logout, which needs the calling session.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	verr := dErrors.New(dErrors.CodeValidation, "invalid login")
	failed := false
	if r.Email == "" {
		verr = verr.WithField("email", "email is required")
		failed = true
	}
	if r.Password == "" {
		verr = verr.WithField("password", "password is required")
		failed = true
	}
	if failed {
		return verr
	}
	return nil
}

// LoginResponse is a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Device    string    `json:"device"`
	AccountID string    `json:"account_id"`
	IsStaff   bool      `json:"is_staff"`
	FullName  string    `json:"full_name"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "login failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt,
		Device:    result.Session.Device,
		AccountID: result.Account.ID.String(),
		IsStaff:   result.Account.IsStaff,
		FullName:  result.Account.FullName(),
	})
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Logout(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
