// Package handler exposes the activity log to staff and the public contact
// form that feeds into it.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"culturecrm/internal/activity/models"
	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Service defines the activity operations the handler exposes.
type Service interface {
	Record(ctx context.Context, entry models.Entry) error
	List(ctx context.Context, filter models.Filter) ([]models.Entry, error)
}

// Handler wires activity endpoints to the activity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the contact form endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/contact", h.HandleContact)
}

// RegisterAdmin mounts the staff-only activity log.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/activity", h.HandleListActivity)
}

// ContactRequest is a message from the public contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Message = strings.TrimSpace(r.Message)
}

func (r *ContactRequest) Validate() error {
	verr := dErrors.New(dErrors.CodeValidation, "invalid contact message")
	failed := false
	if !govalidator.StringLength(r.Name, "1", "100") {
		verr = verr.WithField("name", "name is required (at most 100 characters)")
		failed = true
	}
	if !govalidator.IsEmail(r.Email) {
		verr = verr.WithField("email", "a valid email address is required")
		failed = true
	}
	if !govalidator.StringLength(r.Message, "1", "5000") {
		verr = verr.WithField("message", "message is required (at most 5000 characters)")
		failed = true
	}
	if failed {
		return verr
	}
	return nil
}

// HandleContact handles POST /contact.
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ContactRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.service.Record(ctx, models.Entry{
		Action:      models.ActionContactMessage,
		Description: req.Name + " <" + req.Email + ">: " + req.Message,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record contact message",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}

// EntryResponse is one activity log record.
type EntryResponse struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id,omitempty"`
	Action       string    `json:"action"`
	TargetMember string    `json:"target_member,omitempty"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ActivityResponse wraps an activity log page, newest first.
type ActivityResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// HandleListActivity handles GET /admin/activity.
func (h *Handler) HandleListActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp := EntryResponse{
			ID:          entry.ID,
			Action:      string(entry.Action),
			Description: entry.Description,
			IPAddress:   entry.IPAddress,
			Timestamp:   entry.Timestamp,
		}
		if entry.AccountID != nil {
			resp.AccountID = entry.AccountID.String()
		}
		if entry.TargetMember != nil {
			resp.TargetMember = entry.TargetMember.String()
		}
		out = append(out, resp)
	}
	httputil.WriteJSON(w, http.StatusOK, ActivityResponse{Entries: out})
}

func filterFromURL(r *http.Request) (models.Filter, error) {
	values := r.URL.Query()
	filter := models.Filter{
		Action: models.Action(strings.TrimSpace(values.Get("action"))),
	}

	if raw := strings.TrimSpace(values.Get("account_id")); raw != "" {
		accountID, err := id.ParseAccountID(raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "invalid account id filter")
		}
		filter.AccountID = &accountID
	}
	if raw := strings.TrimSpace(values.Get("member_id")); raw != "" {
		memberID, err := id.ParseMemberID(raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "invalid member id filter")
		}
		filter.TargetMember = &memberID
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
