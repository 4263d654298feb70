package postgres

import (
	"gorm.io/gorm"

	"github.com/codehaven/licensing-service/internal/ports"
)

// Repositories bundles every Postgres-backed port implementation.
type Repositories struct {
	Products        ports.ProductRepository
	Licenses        ports.LicenseRepository
	LicenseDomains  ports.LicenseDomainRepository
	VerificationLog ports.VerificationLogRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:        &productRepository{db: db},
		Licenses:        &licenseRepository{db: db},
		LicenseDomains:  &licenseDomainRepository{db: db},
		VerificationLog: &verificationLogRepository{db: db},
	}
}
