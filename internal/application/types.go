package application

import (
	"time"
)

// VerifyRequest carries one verification attempt. IPAddress is populated by
// the transport adapter, never from the request body.
type VerifyRequest struct {
	PurchaseCode string `json:"purchase_code"`
	ProductSlug  string `json:"product_slug"`
	Domain       string `json:"domain"`
	IPAddress    string `json:"-"`
}

// VerificationResult is the success payload for a verification. VerifiedAt is
// the original computation time and is preserved across cache hits.
type VerificationResult struct {
	Valid            bool       `json:"valid"`
	LicenseType      string     `json:"license_type"`
	Status           string     `json:"status"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	SupportExpiresAt *time.Time `json:"support_expires_at,omitempty"`
	DomainAllowed    bool       `json:"domain_allowed"`
	Method           string     `json:"verification_method"`
	VerifiedAt       time.Time  `json:"verified_at"`
}

// RegisterRequest is an explicit license registration for a domain.
type RegisterRequest struct {
	PurchaseCode string `json:"purchase_code"`
	ProductSlug  string `json:"product_slug"`
	Domain       string `json:"domain"`
	IPAddress    string `json:"-"`
}

// RegisterResponse reports the bound license after registration.
type RegisterResponse struct {
	LicenseKey       string     `json:"license_key"`
	LicenseType      string     `json:"license_type"`
	Domain           string     `json:"domain"`
	DomainsRemaining int        `json:"domains_remaining"`
	SupportExpiresAt *time.Time `json:"support_expires_at,omitempty"`
}

// StatusRequest looks up license state without domain side effects.
type StatusRequest struct {
	PurchaseCode string `json:"purchase_code"`
	ProductSlug  string `json:"product_slug"`
}

// StatusResponse is the read-only license snapshot.
type StatusResponse struct {
	Status           string     `json:"status"`
	LicenseType      string     `json:"license_type"`
	MaxDomains       int        `json:"max_domains"`
	Domains          []string   `json:"domains"`
	DomainsRemaining int        `json:"domains_remaining"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	SupportExpiresAt *time.Time `json:"support_expires_at,omitempty"`
}

// BulkVerifyRequest batches up to MaxBulkItems verification attempts.
type BulkVerifyRequest struct {
	Items     []VerifyRequest `json:"items"`
	IPAddress string          `json:"-"`
}

// MaxBulkItems caps a bulk-verify batch; exceeding it is a validation error
// and no item is processed.
const MaxBulkItems = 100

// BulkVerifyItemResult is the per-item outcome inside a bulk response.
type BulkVerifyItemResult struct {
	Valid     bool                `json:"valid"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Data      *VerificationResult `json:"data,omitempty"`
}

// BulkVerifyResponse aggregates per-item outcomes in request order.
type BulkVerifyResponse struct {
	Results []BulkVerifyItemResult `json:"results"`
}

// StatisticsResponse summarizes license totals and recent verification volume.
type StatisticsResponse struct {
	Licenses struct {
		Total     int64 `json:"total"`
		Active    int64 `json:"active"`
		Suspended int64 `json:"suspended"`
		Revoked   int64 `json:"revoked"`
		Expired   int64 `json:"expired"`
	} `json:"licenses"`
	Verifications struct {
		WindowHours int64 `json:"window_hours"`
		Total       int64 `json:"total"`
		Success     int64 `json:"success"`
		Failed      int64 `json:"failed"`
		RateLimited int64 `json:"rate_limited"`
	} `json:"verifications"`
	TopProducts []ProductCount `json:"top_products"`
}

// ProductCount pairs a product slug with its verification volume.
type ProductCount struct {
	ProductSlug string `json:"product_slug"`
	Count       int64  `json:"count"`
}
