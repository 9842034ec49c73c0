package handler

// RESPONSE HELPERS:
// Every response from this API — success or failure — is the same envelope:
//
//	{"success": true,  "message": "...", "data": {...}}
//	{"success": false, "error": "not_found", "message": "..."}
//
// One shape means the frontend never branches on response format, only on
// the success flag and the machine-readable error type.

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/sakif/rulesmith/internal/apperror"
)

// envelope is the standard response shape for all API endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"` // machine-readable error type
	Data    any    `json:"data,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body — once Encode writes,
// the headers are on the wire.
func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeSuccess sends a success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps a domain error to its HTTP status and sends the failure
// envelope.
//
// This is the single translation point between the apperror taxonomy and
// HTTP. Services never see status codes; handlers never invent error types.
// Unknown errors collapse to a generic 500 — raw internal error text never
// crosses the boundary.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

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
		case errors.Is(err, apperror.ErrStorage):
			status = http.StatusInternalServerError
			errorType = "storage_failure"
		}

		writeJSON(w, status, envelope{
			Success: false,
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
