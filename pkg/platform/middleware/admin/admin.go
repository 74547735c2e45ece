// Package admin gates routes behind the staff flag set by the auth
// middleware.
package admin

import (
	"log/slog"
	"net/http"

	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/requestcontext"

	dErrors "culturecrm/pkg/domain-errors"
)

// RequireStaff rejects authenticated requests whose session does not carry
// the staff flag. Must run after auth.Authenticate.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.IsStaff(ctx) {
				if logger != nil {
					logger.WarnContext(ctx, "staff route refused",
						"request_id", requestcontext.RequestID(ctx),
						"account_id", requestcontext.AccountID(ctx).String(),
					)
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden,
					"staff privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
