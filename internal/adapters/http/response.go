package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codehaven/licensing-service/internal/application"
	"github.com/codehaven/licensing-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess emits the generic success envelope.
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": true,
		"message": message,
	})
}

// writeVerifySuccess emits the verification envelope, which carries `valid`
// instead of `success` for compatibility with license-client integrations.
func writeVerifySuccess(w http.ResponseWriter, result application.VerificationResult) {
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"message": "License valid",
		"data":    result,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success":    false,
		"message":    message,
		"error_code": code,
	})
}

func writeVerifyError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]any{
		"valid":      false,
		"message":    message,
		"error_code": code,
	})
}

// mapDomainError resolves an error to HTTP status, stable code and canonical
// message. Codes and messages come from the application layer so bulk items
// and top-level envelopes never drift apart.
func mapDomainError(err error) (int, string, string) {
	return statusForError(err), application.ErrorCode(err), application.ErrorMessage(err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrBatchTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsafeInput),
		errors.Is(err, domain.ErrInvalidPurchaseCodeFormat),
		errors.Is(err, domain.ErrInvalidPurchaseCodeCharacters):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrLicenseNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLicenseExpired),
		errors.Is(err, domain.ErrLicenseSuspended),
		errors.Is(err, domain.ErrLicenseRevoked),
		errors.Is(err, domain.ErrDomainLimitExceeded),
		errors.Is(err, domain.ErrDomainNotRegistered):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
