// Package httpx writes the JSON envelope used by every API route.
//
// Success: {"success": true, "data": ...}
// Failure: {"success": false, "error": "...", "code": "...", "details": ...}
package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aTrapDeer/portfolio-cms/internal/errs"
)

// Envelope is the outer shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Error codes.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeValidation      = "VALIDATION_FAILED"
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyAttempts = "TOO_MANY_ATTEMPTS"
	CodeTimeout         = "TIMEOUT"
	CodeInternal        = "INTERNAL"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("httpx: encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal error","code":"INTERNAL"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// JSONError writes a failure envelope.
func JSONError(w http.ResponseWriter, status int, code, msg string, details any) {
	JSON(w, status, Envelope{Error: msg, Code: code, Details: details})
}

// Fail maps err onto the error taxonomy and writes the matching response.
// Unexpected errors are logged and reported with a generic message.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *errs.ValidationError
	var berr *errs.BadRequestError
	switch {
	case errors.As(err, &verr):
		JSONError(w, http.StatusBadRequest, CodeValidation, "validation failed", verr.Fields)
	case errors.As(err, &berr):
		JSONError(w, http.StatusBadRequest, CodeBadRequest, berr.Message, nil)
	case errors.Is(err, errs.ErrUnauthorized):
		JSONError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	case errors.Is(err, errs.ErrNotFound):
		JSONError(w, http.StatusNotFound, CodeNotFound, "resource not found", nil)
	case errors.Is(err, errs.ErrConflict):
		JSONError(w, http.StatusConflict, CodeConflict, "resource already exists", nil)
	case errors.Is(err, errs.ErrTooManyAttempts):
		JSONError(w, http.StatusTooManyRequests, CodeTooManyAttempts, "too many attempts, try again later", nil)
	default:
		log.Printf("%s %s: %+v", r.Method, r.URL.Path, err)
		JSONError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}
