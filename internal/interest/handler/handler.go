// Package handler serves the interest catalog to the registration form.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"culturecrm/internal/interest/models"
	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/requestcontext"

	dErrors "culturecrm/pkg/domain-errors"
)

// Catalog lists the enumerated interest set.
type Catalog interface {
	List(ctx context.Context) ([]*models.Interest, error)
}

// Handler serves the read-only interest catalog.
type Handler struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(catalog Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// RegisterPublic mounts the catalog listing. The set is public: the
// registration form renders it before any account exists.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/interests", h.HandleListInterests)
}

// InterestResponse is one catalog entry.
type InterestResponse struct {
	Name        string `json:"name"`
	Display     string `json:"display"`
	Description string `json:"description"`
}

// CatalogResponse is the whole interest catalog in display order.
type CatalogResponse struct {
	Interests []InterestResponse `json:"interests"`
}

// HandleListInterests handles GET /interests.
func (h *Handler) HandleListInterests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	interests, err := h.catalog.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list interest catalog",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list interests"))
		return
	}

	out := make([]InterestResponse, 0, len(interests))
	for _, interest := range interests {
		out = append(out, InterestResponse{
			Name:        string(interest.Name),
			Display:     interest.Name.Display(),
			Description: interest.Description,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, CatalogResponse{Interests: out})
}
