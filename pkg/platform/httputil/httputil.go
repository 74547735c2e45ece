// Package httputil holds the JSON helpers shared by all HTTP handlers:
// response writing, coded-error translation and request decoding.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "culturecrm/pkg/domain-errors"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error into its HTTP response. Internal
// errors hide their description so infrastructure details never leak to
// clients; everything else surfaces the message and any field-level detail.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}

	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
			resp.Fields = de.Fields
		} else {
			resp.ErrorDescription = err.Error()
		}
	}

	WriteJSON(w, dErrors.HTTPStatus(code), resp)
}

type normalizable interface {
	Normalize()
}

type validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T, then runs Normalize and
// Validate when T implements them. On failure it writes the error response
// and returns false; the handler just returns.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return nil, false
	}

	if n, ok := any(req).(normalizable); ok {
		n.Normalize()
	}
	if v, ok := any(req).(validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return req, true
}
