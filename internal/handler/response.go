package handler

// Response helpers shared by every handler. All success bodies go
// through writeJSON; all failures go through writeError, which is the
// single place domain errors are mapped to HTTP status codes:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	ErrStore        → 500
//
// Every error response has the same shape:
//
//	{"error":"not_found","message":"post not found with id abc123"}
//
// Store errors are the exception: their message can carry driver
// detail meant for logs, so the client gets a generic message instead.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tazwar/feedpost/internal/apperror"
)

// ErrorResponse is the standard error format returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers
// and status must be set before the first body write; Encode writes.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to HTTP and sends it. errors.Is walks
// the wrap chain, so services are free to annotate with fmt.Errorf %w.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrStore):
			// The message may contain driver internals; don't leak it.
			status = http.StatusInternalServerError
			errorType = "internal_error"
			message = "internal server error"
		}

		writeJSON(w, status, ErrorResponse{Error: errorType, Message: message})
		return
	}

	// Unknown error — generic 500, details stay server-side.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}
