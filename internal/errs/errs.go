// Package errs defines the error taxonomy shared by the repositories and the HTTP gateway.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Repositories and the gate return these (possibly wrapped);
// the gateway maps them to status codes with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// FieldError is a single schema failure on one field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field failure of a payload, in schema order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Err returns nil when no failures were recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// BadRequestError is a malformed request that is not a per-field schema failure
// (body is not JSON, upload is oversized, unknown upload folder...).
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// BadRequest builds a BadRequestError.
func BadRequest(format string, args ...any) error {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}
