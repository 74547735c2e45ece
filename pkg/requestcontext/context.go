// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets services consume request metadata without pulling in
// transport code, and lets tests inject values directly.
package requestcontext

import (
	"context"
	"time"

	id "culturecrm/pkg/domain"
)

type (
	accountIDKey   struct{}
	sessionIDKey   struct{}
	staffKey       struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// AccountID retrieves the authenticated account ID from the context.
// Returns the zero value if not set.
func AccountID(ctx context.Context) id.AccountID {
	if accountID, ok := ctx.Value(accountIDKey{}).(id.AccountID); ok {
		return accountID
	}
	return id.AccountID{}
}

// WithAccountID injects an account ID into the context.
func WithAccountID(ctx context.Context, accountID id.AccountID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

// SessionID retrieves the session ID from the context.
func SessionID(ctx context.Context) id.SessionID {
	if sessionID, ok := ctx.Value(sessionIDKey{}).(id.SessionID); ok {
		return sessionID
	}
	return id.SessionID{}
}

// WithSessionID injects a session ID into the context.
func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// IsStaff reports whether the authenticated account carries the staff flag.
func IsStaff(ctx context.Context) bool {
	staff, _ := ctx.Value(staffKey{}).(bool)
	return staff
}

// WithStaff marks the context as belonging to a staff account.
func WithStaff(ctx context.Context, staff bool) context.Context {
	return context.WithValue(ctx, staffKey{}, staff)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, CLI, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Tests use this to pin the
// clock; middleware uses it so one request observes one timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
