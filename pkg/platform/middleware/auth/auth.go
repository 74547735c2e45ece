// Package auth is the bearer-token middleware. It hands the token to a
// session resolver and, on success, publishes the session's identity through
// pkg/requestcontext for everything downstream.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"culturecrm/pkg/platform/httputil"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// Session is the resolved identity behind a bearer token.
type Session struct {
	SessionID id.SessionID
	AccountID id.AccountID
	IsStaff   bool
}

// Resolver validates a bearer token against the server-side session store.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Session, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, token string) (Session, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (Session, error) {
	return f(ctx, token)
}

// Authenticate rejects requests without a valid bearer token. A revoked or
// expired session fails here even if the token's signature is still good.
func Authenticate(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized,
					"missing or invalid Authorization header"))
				return
			}

			session, err := resolver.Resolve(ctx, token)
			if err != nil {
				if logger != nil && !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.ErrorContext(ctx, "session resolution failed",
						"request_id", requestcontext.RequestID(ctx),
						"error", err,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithAccountID(ctx, session.AccountID)
			ctx = requestcontext.WithSessionID(ctx, session.SessionID)
			ctx = requestcontext.WithStaff(ctx, session.IsStaff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
