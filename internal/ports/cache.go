package ports

import (
	"context"
	"time"
)

// CachedVerification is the memoized verification outcome for one
// (purchase_code, product_slug, domain) triple. VerifiedAt keeps the original
// computation time so cache hits are byte-identical to the first response.
type CachedVerification struct {
	Valid            bool       `json:"valid"`
	LicenseType      string     `json:"license_type"`
	Status           string     `json:"status"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	SupportExpiresAt *time.Time `json:"support_expires_at,omitempty"`
	DomainAllowed    bool       `json:"domain_allowed"`
	Method           string     `json:"verification_method"`
	VerifiedAt       time.Time  `json:"verified_at"`
}

// VerificationCache memoizes verification results with a bounded TTL.
// A nil result with nil error is a miss; backend failures are reported so the
// caller can degrade to the matcher (a miss is always safe).
type VerificationCache interface {
	Get(ctx context.Context, productSlug, codeDigest, domainDigest string) (*CachedVerification, error)
	Put(ctx context.Context, productSlug, codeDigest, domainDigest string, value CachedVerification, ttl time.Duration) error
	// InvalidateLicense evicts every cached triple for one license, used by
	// admin suspend/revoke flows so stale positives never outlive the change.
	InvalidateLicense(ctx context.Context, productSlug, codeDigest string) error
}

// RateLimitStore is a fixed-window counter keyed by caller identity.
// Increment returns the post-increment count for the current window; the
// caller compares it against the configured threshold. Errors must be treated
// as limit-exceeded (fail closed).
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
