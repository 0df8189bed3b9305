// internal/core/apperr/apperr.go
package apperr

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies the category of a failure. Handlers branch on the kind,
// never on concrete error types, so the set is closed on purpose.
type Kind int

const (
	BadRequest Kind = iota
	Validation
	DuplicateKey
	NotFound
	IDNotFound
	Unauthenticated
	Unauthorized
	Server
)

// String returns the kind's name for logs.
func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Validation:
		return "validation"
	case DuplicateKey:
		return "duplicate_key"
	case NotFound:
		return "not_found"
	case IDNotFound:
		return "id_not_found"
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case Server:
		return "server"
	}
	return "unknown"
}

// HTTPStatus maps a kind to the status code controllers respond with.
func (k Kind) HTTPStatus() int {
	switch k {
	case BadRequest, Validation, DuplicateKey:
		return http.StatusBadRequest
	case NotFound, IDNotFound:
		return http.StatusNotFound
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// FieldError is one message, optionally tied to the field that caused it.
// This is the shape controllers serialize into error responses.
type FieldError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error is the single error type this module produces. The kind tag drives
// all dispatch; Fields is populated for Validation errors (one entry per
// violated field) and left empty otherwise.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.Kind == Validation && len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			if f.Field != "" {
				parts = append(parts, f.Field+": "+f.Message)
			} else {
				parts = append(parts, f.Message)
			}
		}
		return "validation failed: " + strings.Join(parts, "; ")
	}
	return e.Message
}

// Unwrap exposes the underlying store error, when one exists.
func (e *Error) Unwrap() error { return e.cause }

// SerializeErrors returns the response body entries for this error.
// Every kind yields at least one entry.
func (e *Error) SerializeErrors() []FieldError {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return []FieldError{{Message: e.Message}}
}

// New constructs an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf constructs an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// NewValidation builds a Validation error from per-field violations.
func NewValidation(fields []FieldError) *Error {
	return &Error{Kind: Validation, Message: "validation failed", Fields: fields}
}

// NewIDNotFound reports that no document matched the given id.
func NewIDNotFound(id string) *Error {
	return Newf(IDNotFound, "no document found with id %q", id)
}

// KindOf returns the kind of err, or Server for anything that did not
// originate here.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Server
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// Serialize extracts response entries from any error. Non-apperr errors
// collapse to a single generic entry so internals never leak to clients.
func Serialize(err error) []FieldError {
	if e, ok := err.(*Error); ok {
		return e.SerializeErrors()
	}
	return []FieldError{{Message: "something went wrong"}}
}

// StatusOf returns the HTTP status for any error.
func StatusOf(err error) int {
	return KindOf(err).HTTPStatus()
}
