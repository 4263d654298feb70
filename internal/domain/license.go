package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LicenseType classifies how a license was issued.
type LicenseType string

const (
	LicenseTypeSingle          LicenseType = "single"
	LicenseTypeRegular         LicenseType = "regular"
	LicenseTypeExtended        LicenseType = "extended"
	LicenseTypeSystemGenerated LicenseType = "system_generated"
	// LicenseTypeEnvatoMarket marks rows created from a marketplace fallback
	// lookup rather than a locally issued license.
	LicenseTypeEnvatoMarket LicenseType = "envato_market"
)

// LicenseStatus is the stored lifecycle state. Expiry is derived from
// LicenseExpiresAt at read time, never stored as a transition.
type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusRevoked   LicenseStatus = "revoked"
	// LicenseStatusExpired only ever appears as a derived effective status.
	LicenseStatusExpired LicenseStatus = "expired"
)

type DomainStatus string

const (
	DomainStatusActive   DomainStatus = "active"
	DomainStatusInactive DomainStatus = "inactive"
)

// Product is immutable reference data a license is matched against.
type Product struct {
	ProductID      uuid.UUID
	Slug           string
	Name           string
	EnvatoItemID   *int64
	CurrentVersion string
	CreatedAt      time.Time
}

// License is the canonical licensing aggregate. PurchaseCode is immutable once
// issued and rows are never hard-deleted, only status-flagged.
type License struct {
	LicenseID        uuid.UUID
	PurchaseCode     string
	LicenseKey       string
	ProductID        uuid.UUID
	LicenseType      LicenseType
	Status           LicenseStatus
	MaxDomains       int
	LicenseExpiresAt *time.Time
	SupportExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LicenseDomain binds a license to one normalized hostname.
// Invariant: active rows per license never exceed License.MaxDomains.
type LicenseDomain struct {
	DomainID     uuid.UUID
	LicenseID    uuid.UUID
	Domain       string
	Status       DomainStatus
	RegisteredAt time.Time
}

// VerificationLogEntry is the append-only audit record for a verification
// attempt. Purchase codes are masked before storage.
type VerificationLogEntry struct {
	ID                 int64
	LicenseID          *uuid.UUID
	ProductSlug        string
	Domain             string
	PurchaseCodeMasked string
	Status             string
	Reason             string
	Method             string
	IPAddress          string
	CreatedAt          time.Time
}

const (
	VerificationStatusSuccess     = "success"
	VerificationStatusFailed      = "failed"
	VerificationStatusRateLimited = "rate_limited"

	VerificationMethodLocal  = "local"
	VerificationMethodEnvato = "envato"
)

// Expired reports whether the license term has lapsed at the given instant.
// A nil LicenseExpiresAt means a perpetual license.
func (l License) Expired(now time.Time) bool {
	return l.LicenseExpiresAt != nil && l.LicenseExpiresAt.Before(now)
}

// EffectiveStatus folds timestamp-derived expiry into the stored status.
// Revoked and suspended take precedence over expiry so admin actions stay visible.
func (l License) EffectiveStatus(now time.Time) LicenseStatus {
	if l.Status == LicenseStatusRevoked || l.Status == LicenseStatusSuspended {
		return l.Status
	}
	if l.Expired(now) {
		return LicenseStatusExpired
	}
	return l.Status
}

// CanTransition validates the stored-state machine:
// active <-> suspended, either -> revoked, revoked terminal.
func CanTransition(from, to LicenseStatus) bool {
	switch from {
	case LicenseStatusActive:
		return to == LicenseStatusSuspended || to == LicenseStatusRevoked
	case LicenseStatusSuspended:
		return to == LicenseStatusActive || to == LicenseStatusRevoked
	default:
		return false
	}
}

// MaskPurchaseCode redacts the middle of a code for audit storage, keeping
// just enough of the prefix/suffix to correlate support requests.
func MaskPurchaseCode(code string) string {
	if len(code) <= 8 {
		return strings.Repeat("*", len(code))
	}
	return code[:4] + strings.Repeat("*", len(code)-8) + code[len(code)-4:]
}
