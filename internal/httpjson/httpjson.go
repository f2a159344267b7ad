// Package httpjson carries the JSON response envelope and the mapping from
// the typed error taxonomy to HTTP status codes. Every controller responds
// through here so the {"success": ...} shape stays uniform.
package httpjson

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "smartbiz/internal/errors"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool                         `json:"success"`
	Error   string                       `json:"error"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func Write(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// OK writes a success envelope with the given payload.
func OK(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	Write(w, logger, status, envelope{Success: true, Data: data})
}

// OKMessage writes a success envelope with a human-readable message.
func OKMessage(w http.ResponseWriter, logger *zap.Logger, status int, message string, data any) {
	Write(w, logger, status, envelope{Success: true, Message: message, Data: data})
}

// Error maps a service error onto a status code and error envelope.
// Internal errors are logged and returned as a generic message so store
// details never leak to callers.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		Write(w, logger, http.StatusBadRequest, errorEnvelope{
			Error:   ve.Message,
			Details: ve.Details,
		})
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		Write(w, logger, http.StatusNotFound, errorEnvelope{Error: nfe.Message})
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		Write(w, logger, http.StatusConflict, errorEnvelope{Error: ce.Message})
		return
	}

	if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		Write(w, logger, http.StatusBadRequest, errorEnvelope{Error: ise.Error()})
		return
	}

	if pe, ok := apperrors.IsPermissionError(err); ok {
		Write(w, logger, http.StatusForbidden, errorEnvelope{Error: pe.Message})
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	Write(w, logger, http.StatusInternalServerError, errorEnvelope{
		Error: "an unexpected error occurred",
	})
}

// Decode reads a JSON body into dst, converting malformed input into a
// ValidationError.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}
