package application

import (
	"errors"

	"github.com/codehaven/licensing-service/internal/domain"
)

// ErrorCode maps a domain error to its stable machine-readable code.
// The HTTP adapter reuses this mapping so batch items and top-level envelopes
// always agree.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPurchaseCodeFormat):
		return "INVALID_PURCHASE_CODE_FORMAT"
	case errors.Is(err, domain.ErrInvalidPurchaseCodeCharacters):
		return "INVALID_PURCHASE_CODE_CHARACTERS"
	case errors.Is(err, domain.ErrUnsafeInput), errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrBatchTooLarge):
		return "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, domain.ErrProductNotFound):
		return "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrLicenseNotFound):
		return "LICENSE_NOT_FOUND"
	case errors.Is(err, domain.ErrLicenseExpired):
		return "LICENSE_EXPIRED"
	case errors.Is(err, domain.ErrLicenseSuspended):
		return "LICENSE_SUSPENDED"
	case errors.Is(err, domain.ErrLicenseRevoked):
		return "LICENSE_REVOKED"
	case errors.Is(err, domain.ErrDomainLimitExceeded):
		return "DOMAIN_LIMIT_EXCEEDED"
	case errors.Is(err, domain.ErrDomainNotRegistered):
		return "DOMAIN_NOT_REGISTERED"
	case errors.Is(err, domain.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// ErrorMessage renders the canonical human-readable message for an error.
// Validation errors keep their specific text; everything else gets a fixed
// phrase so responses stay stable across internals.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, domain.ErrLicenseNotFound):
		return "License not found"
	case errors.Is(err, domain.ErrLicenseExpired):
		return "License expired"
	case errors.Is(err, domain.ErrLicenseSuspended):
		return "License suspended"
	case errors.Is(err, domain.ErrLicenseRevoked):
		return "License revoked"
	case errors.Is(err, domain.ErrDomainLimitExceeded):
		return "Domain limit exceeded"
	case errors.Is(err, domain.ErrDomainNotRegistered):
		return "Domain not registered for this license"
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many requests"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Invalid or missing API token"
	case errors.Is(err, domain.ErrInvalidPurchaseCodeFormat):
		return "Invalid purchase code format"
	case errors.Is(err, domain.ErrInvalidPurchaseCodeCharacters):
		return "Purchase code contains invalid characters"
	case errors.Is(err, domain.ErrUnsafeInput),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConflict):
		return err.Error()
	default:
		return "Internal server error"
	}
}
