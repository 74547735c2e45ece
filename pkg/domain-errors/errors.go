// Package dErrors provides coded domain errors.
//
// Services return these so transport layers can translate failures into
// consistent HTTP responses without string matching. Stores do NOT use this
// package; they return pkg/platform/sentinel errors, which services wrap into
// coded errors at the feature boundary.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeInvalidInput marks malformed identifiers or payloads rejected at
	// the trust boundary before any business rule runs.
	CodeInvalidInput Code = "invalid_input"

	// CodeValidation marks business-level input validation failures. The
	// error may carry field-level messages.
	CodeValidation Code = "validation_failed"

	// CodeConflict marks business-rule conflicts such as a duplicate email.
	CodeConflict Code = "conflict"

	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized marks a request with no authenticated actor.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks an authenticated actor lacking the required
	// privilege (e.g. a non-staff account invoking an admin operation).
	CodeForbidden Code = "forbidden"

	// CodeInvalidTransition marks a lifecycle state-machine precondition
	// violation. Never silently corrected.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeInvariantViolation marks a broken model invariant detected by a
	// constructor or Can* guard. Services usually convert this to
	// CodeValidation or CodeInvalidTransition before surfacing.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeRateLimited marks a caller temporarily locked out after too many
	// attempts.
	CodeRateLimited Code = "rate_limited"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with optional field-level detail.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithField returns a copy of the error carrying a field-level message.
// Used by request validation to surface per-field problems.
func (e *Error) WithField(field, message string) *Error {
	fields := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[field] = message
	return &Error{Code: e.Code, Message: e.Message, Fields: fields, cause: e.cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf extracts field-level messages from err, or nil.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// HTTPStatus maps a code to its HTTP status so all transport layers agree.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition, CodeInvariantViolation:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
