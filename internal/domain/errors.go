package domain

import "errors"

var (
	// ErrProductNotFound is returned when no product matches the requested slug.
	// Product resolution happens before license lookup so callers get a precise 404.
	ErrProductNotFound = errors.New("product not found")
	// ErrLicenseNotFound is returned when neither the local database nor the
	// marketplace fallback can resolve the purchase code for the product.
	ErrLicenseNotFound = errors.New("license not found")

	ErrLicenseExpired   = errors.New("license expired")
	ErrLicenseSuspended = errors.New("license suspended")
	ErrLicenseRevoked   = errors.New("license revoked")

	// ErrDomainLimitExceeded signals the active-domain count already equals
	// the license max_domains and the requesting domain is not among them.
	ErrDomainLimitExceeded = errors.New("domain limit exceeded")
	// ErrDomainNotRegistered is returned when auto-registration is disabled
	// and the requesting domain has no active binding.
	ErrDomainNotRegistered = errors.New("domain not registered")

	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPurchaseCodeFormat covers length violations; the charset case
	// is kept distinct so clients can surface a targeted message.
	ErrInvalidPurchaseCodeFormat     = errors.New("invalid purchase code format")
	ErrInvalidPurchaseCodeCharacters = errors.New("purchase code contains invalid characters")
	// ErrUnsafeInput marks values carrying HTML/script metacharacters.
	// These are rejected outright and recorded to the security audit log.
	ErrUnsafeInput = errors.New("unsafe input")

	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	// ErrBatchTooLarge rejects bulk requests above the item cap before any
	// item is processed; it maps to 422 rather than 400.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrInvalidTransition guards the license state machine: revoked is
	// terminal and only active/suspended may flip between each other.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("resource not found")
)
