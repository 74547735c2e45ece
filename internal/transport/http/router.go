// Package httptransport assembles the HTTP surface: middleware chain, public
// endpoints, the authenticated member surface and the staff admin area.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activityhandler "culturecrm/internal/activity/handler"
	authhandler "culturecrm/internal/auth/handler"
	interesthandler "culturecrm/internal/interest/handler"
	memberhandler "culturecrm/internal/member/handler"
	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/platform/middleware/admin"
	authmw "culturecrm/pkg/platform/middleware/auth"
	"culturecrm/pkg/platform/middleware/metadata"
	"culturecrm/pkg/platform/middleware/requesttime"
)

// Config carries router-level settings.
type Config struct {
	// SiteTitle is reported by the index endpoint so deployments can brand
	// themselves.
	SiteTitle string
}

// Dependencies holds everything the router mounts.
type Dependencies struct {
	Auth      *authhandler.Handler
	Members   *memberhandler.Handler
	Interests *interesthandler.Handler
	Activity  *activityhandler.Handler
	Resolver  authmw.Resolver
	Logger    *slog.Logger
}

// NewRouter wires the middleware chain and every endpoint group.
func NewRouter(deps Dependencies, cfg Config) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"service": cfg.SiteTitle,
			"status":  "ok",
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Auth.RegisterPublic(r)
	deps.Members.RegisterPublic(r)
	deps.Interests.RegisterPublic(r)
	deps.Activity.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.Authenticate(deps.Resolver, deps.Logger))
		deps.Auth.RegisterAuthenticated(r)
		deps.Members.RegisterAuthenticated(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authmw.Authenticate(deps.Resolver, deps.Logger))
		r.Use(admin.RequireStaff(deps.Logger))
		deps.Members.RegisterAdmin(r)
		deps.Activity.RegisterAdmin(r)
	})

	return r
}
