// Package handler wires the membership endpoints: public registration, the
// member's own profile surface and the admin directory with its lifecycle
// decisions.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"culturecrm/internal/member/models"
	"culturecrm/internal/member/service"
	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Service defines the member operations the handler exposes.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*service.RegistrationResult, error)
	GetMember(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	GetByAccount(ctx context.Context, accountID id.AccountID) (*models.Member, error)
	UpdateProfile(ctx context.Context, accountID id.AccountID, req models.UpdateProfileRequest) (*models.Member, error)
	UpdateMemberProfile(ctx context.Context, memberID id.MemberID, req models.UpdateProfileRequest) (*models.Member, error)
	ListMembers(ctx context.Context, query models.SearchQuery) ([]*models.Member, error)
	Approve(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	Reject(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	Deactivate(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	Reactivate(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	BulkApprove(ctx context.Context, ids []id.MemberID) (*service.BulkResult, error)
	BulkReject(ctx context.Context, ids []id.MemberID) (*service.BulkResult, error)
	ReplaceInterests(ctx context.Context, memberID id.MemberID, req models.UpdateInterestsRequest) (*models.Member, error)
	ListInterestHistory(ctx context.Context, memberID id.MemberID) ([]models.InterestHistoryEntry, error)
	ListOwnInterestHistory(ctx context.Context, accountID id.AccountID) ([]models.InterestHistoryEntry, error)
}

// Handler wires membership endpoints to the member service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that need no session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
}

// RegisterAuthenticated mounts the member's own profile surface.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/me", h.HandleGetOwnProfile)
	r.Put("/me", h.HandleUpdateProfile)
	r.Get("/me/interest-history", h.HandleOwnInterestHistory)
}

// RegisterAdmin mounts the staff-only member directory and lifecycle
// decisions. The router applies the staff gate; the service enforces it
// again.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/members", h.HandleListMembers)
	r.Post("/members/bulk-approve", h.HandleBulkApprove)
	r.Post("/members/bulk-reject", h.HandleBulkReject)
	r.Get("/members/{memberID}", h.HandleGetMember)
	r.Patch("/members/{memberID}", h.HandleUpdateMemberProfile)
	r.Post("/members/{memberID}/approve", h.decision("approve", h.service.Approve))
	r.Post("/members/{memberID}/reject", h.decision("reject", h.service.Reject))
	r.Post("/members/{memberID}/deactivate", h.decision("deactivate", h.service.Deactivate))
	r.Post("/members/{memberID}/reactivate", h.decision("reactivate", h.service.Reactivate))
	r.Put("/members/{memberID}/interests", h.HandleReplaceInterests)
	r.Get("/members/{memberID}/interest-history", h.HandleInterestHistory)
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Register(ctx, *req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "registration failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "membership application received",
		"request_id", requestID,
		"member_id", result.Member.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRegistration(result))
}

// HandleGetOwnProfile handles GET /me.
func (h *Handler) HandleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := h.service.GetByAccount(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

// HandleUpdateProfile handles PUT /me.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.UpdateProfile(ctx, requestcontext.AccountID(ctx), *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "profile updated",
		"request_id", requestID,
		"member_id", member.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

// HandleOwnInterestHistory handles GET /me/interest-history.
func (h *Handler) HandleOwnInterestHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.service.ListOwnInterestHistory(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistory(entries))
}

// HandleListMembers handles GET /admin/members.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := searchQueryFromURL(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	members, err := h.service.ListMembers(ctx, query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMembers(members))
}

// HandleGetMember handles GET /admin/members/{memberID}.
func (h *Handler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID, ok := h.memberIDFromURL(w, r)
	if !ok {
		return
	}

	member, err := h.service.GetMember(ctx, memberID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

// HandleUpdateMemberProfile handles PATCH /admin/members/{memberID}.
func (h *Handler) HandleUpdateMemberProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	memberID, ok := h.memberIDFromURL(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.UpdateMemberProfile(ctx, memberID, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member profile updated",
		"request_id", requestID,
		"member_id", memberID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

// decision builds the handler for one lifecycle transition endpoint.
func (h *Handler) decision(name string, apply func(ctx context.Context, memberID id.MemberID) (*models.Member, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		memberID, ok := h.memberIDFromURL(w, r)
		if !ok {
			return
		}

		member, err := apply(ctx, memberID)
		if err != nil {
			if dErrors.CodeOf(err) == dErrors.CodeInternal {
				h.logger.ErrorContext(ctx, "lifecycle decision failed",
					"request_id", requestID,
					"decision", name,
					"member_id", memberID.String(),
					"error", err,
				)
			}
			httputil.WriteError(w, err)
			return
		}

		h.logger.InfoContext(ctx, "lifecycle decision applied",
			"request_id", requestID,
			"decision", name,
			"member_id", memberID.String(),
			"status", string(member.Status),
		)
		httputil.WriteJSON(w, http.StatusOK, FromMember(member))
	}
}

// HandleBulkApprove handles POST /admin/members/bulk-approve.
func (h *Handler) HandleBulkApprove(w http.ResponseWriter, r *http.Request) {
	h.bulkDecision(w, r, "bulk-approve", h.service.BulkApprove)
}

// HandleBulkReject handles POST /admin/members/bulk-reject.
func (h *Handler) HandleBulkReject(w http.ResponseWriter, r *http.Request) {
	h.bulkDecision(w, r, "bulk-reject", h.service.BulkReject)
}

func (h *Handler) bulkDecision(w http.ResponseWriter, r *http.Request, name string,
	apply func(ctx context.Context, ids []id.MemberID) (*service.BulkResult, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BulkDecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := apply(ctx, req.ParsedIDs())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bulk decision applied",
		"request_id", requestID,
		"decision", name,
		"processed", result.Processed,
		"skipped", result.Skipped,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleReplaceInterests handles PUT /admin/members/{memberID}/interests.
func (h *Handler) HandleReplaceInterests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	memberID, ok := h.memberIDFromURL(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateInterestsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.ReplaceInterests(ctx, memberID, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "interests replaced",
		"request_id", requestID,
		"member_id", memberID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

// HandleInterestHistory handles GET /admin/members/{memberID}/interest-history.
func (h *Handler) HandleInterestHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID, ok := h.memberIDFromURL(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListInterestHistory(ctx, memberID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistory(entries))
}

func (h *Handler) memberIDFromURL(w http.ResponseWriter, r *http.Request) (id.MemberID, bool) {
	memberID, err := id.ParseMemberID(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid member id"))
		return id.MemberID{}, false
	}
	return memberID, true
}
