// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// ─── Domain error taxonomy ───────────────────────────────────────────────────
// Services return kinded errors; handlers map the kind to an HTTP status.
// The message always carries the concrete offending values so the originating
// UI can display something actionable instead of a generic failure.

type Kind string

const (
	KindNotFound  Kind = "not_found" // referenced entity does not exist
	KindConflict  Kind = "conflict"  // uniqueness or one-time invariant violated
	KindInvalid   Kind = "invalid"   // value-level precondition failed
	KindForbidden Kind = "forbidden" // ownership check failed
)

// Error is a service-level error carrying a classification kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err when it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}
