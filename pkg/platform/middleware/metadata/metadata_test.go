package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"culturecrm/pkg/requestcontext"
)

func TestClientMetadata(t *testing.T) {
	var ip, agent, requestID string
	handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip = requestcontext.ClientIP(ctx)
		agent = requestcontext.UserAgent(ctx)
		requestID = requestcontext.RequestID(ctx)
	}))

	t.Run("forwarded-for wins over remote addr", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:4312"
		r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		r.Header.Set("User-Agent", "test-agent")

		handler.ServeHTTP(httptest.NewRecorder(), r)

		if ip != "203.0.113.9" {
			t.Fatalf("expected forwarded client IP, got %q", ip)
		}
		if agent != "test-agent" {
			t.Fatalf("expected user agent, got %q", agent)
		}
	})

	t.Run("generates a request ID when none is supplied", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if requestID == "" {
			t.Fatal("expected a generated request ID")
		}
		if w.Header().Get("X-Request-ID") != requestID {
			t.Fatal("expected request ID echoed in the response header")
		}
	})

	t.Run("propagates a supplied request ID", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "req-42")

		handler.ServeHTTP(httptest.NewRecorder(), r)

		if requestID != "req-42" {
			t.Fatalf("expected supplied request ID, got %q", requestID)
		}
	})
}

func TestClientIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.4:9000"
	if got := ClientIPFromRequest(r); got != "192.0.2.4" {
		t.Fatalf("expected remote addr without port, got %q", got)
	}

	r.Header.Set("X-Real-IP", "198.51.100.7")
	if got := ClientIPFromRequest(r); got != "198.51.100.7" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
}
