package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codehaven/licensing-service/internal/domain"
)

// ProductRepository serves immutable product reference data.
type ProductRepository interface {
	GetBySlug(ctx context.Context, slug string) (domain.Product, error)
	GetByEnvatoItemID(ctx context.Context, itemID int64) (domain.Product, error)
}

// LicenseCreateParams captures inputs for issuing a new license row.
// Rows created from marketplace fallback use LicenseTypeEnvatoMarket.
type LicenseCreateParams struct {
	PurchaseCode     string
	LicenseKey       string
	ProductID        uuid.UUID
	LicenseType      domain.LicenseType
	MaxDomains       int
	LicenseExpiresAt *time.Time
	SupportExpiresAt *time.Time
	CreatedAt        time.Time
}

// LicenseStatusCounts aggregates license totals for the statistics endpoint.
// Expired is derived by comparing license_expires_at against the query instant.
type LicenseStatusCounts struct {
	Total     int64
	Active    int64
	Suspended int64
	Revoked   int64
	Expired   int64
}

// LicenseRepository manages license persistence. Status transitions go through
// UpdateStatus so the adapter can enforce compare-and-set semantics.
type LicenseRepository interface {
	GetByPurchaseCode(ctx context.Context, productID uuid.UUID, purchaseCode string) (domain.License, error)
	GetByKey(ctx context.Context, licenseKey string) (domain.License, error)
	Create(ctx context.Context, params LicenseCreateParams) (domain.License, error)
	UpdateStatus(ctx context.Context, licenseID uuid.UUID, from, to domain.LicenseStatus, at time.Time) error
	StatusCounts(ctx context.Context, now time.Time) (LicenseStatusCounts, error)
}

// LicenseDomainRepository manages domain bindings. RegisterIfWithinLimit must
// serialize concurrent registrations for the same license (row lock on the
// license inside a transaction) so the max_domains invariant holds under load.
type LicenseDomainRepository interface {
	ListActiveByLicense(ctx context.Context, licenseID uuid.UUID) ([]domain.LicenseDomain, error)
	RegisterIfWithinLimit(ctx context.Context, licenseID uuid.UUID, host string, maxDomains int, at time.Time) (domain.LicenseDomain, error)
}

// VerificationOutcomeCounts aggregates audit-log outcomes over a window.
type VerificationOutcomeCounts struct {
	Total       int64
	Success     int64
	Failed      int64
	RateLimited int64
}

// ProductVerificationCount pairs a product with its verification volume.
type ProductVerificationCount struct {
	ProductSlug string
	Count       int64
}

// VerificationLogRepository is the append-only audit trail.
type VerificationLogRepository interface {
	Insert(ctx context.Context, entry domain.VerificationLogEntry) error
	OutcomeCounts(ctx context.Context, since time.Time) (VerificationOutcomeCounts, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]ProductVerificationCount, error)
}
