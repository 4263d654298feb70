package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codehaven/licensing-service/internal/domain"
)

type licenseDomainRepository struct {
	db *gorm.DB
}

func (r *licenseDomainRepository) ListActiveByLicense(ctx context.Context, licenseID uuid.UUID) ([]domain.LicenseDomain, error) {
	var rows []licenseDomainModel
	err := r.db.WithContext(ctx).
		Where("license_id = ? AND status = ?", licenseID, string(domain.DomainStatusActive)).
		Order("registered_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.LicenseDomain, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainLicenseDomain(item))
	}
	return result, nil
}

// RegisterIfWithinLimit binds a host to a license under a row lock on the
// license, so concurrent registrations racing for the last slot are serialized
// and the active-domain count can never exceed maxDomains.
func (r *licenseDomainRepository) RegisterIfWithinLimit(ctx context.Context, licenseID uuid.UUID, host string, maxDomains int, at time.Time) (domain.LicenseDomain, error) {
	var out licenseDomainModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lic licenseModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("license_id = ?", licenseID).
			Take(&lic).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLicenseNotFound
			}
			return err
		}

		var existing licenseDomainModel
		err = tx.Where("license_id = ? AND domain = ?", licenseID, host).Take(&existing).Error
		switch {
		case err == nil && existing.Status == string(domain.DomainStatusActive):
			out = existing
			return nil
		case err == nil:
			// Inactive binding: reactivation consumes a slot like a new one.
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = licenseDomainModel{}
		default:
			return err
		}

		var active int64
		if err := tx.Model(&licenseDomainModel{}).
			Where("license_id = ? AND status = ?", licenseID, string(domain.DomainStatusActive)).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(maxDomains) {
			return domain.ErrDomainLimitExceeded
		}

		if existing.DomainID != uuid.Nil {
			existing.Status = string(domain.DomainStatusActive)
			if err := tx.Model(&licenseDomainModel{}).
				Where("domain_id = ?", existing.DomainID).
				Update("status", existing.Status).Error; err != nil {
				return err
			}
			out = existing
			return nil
		}

		rec := licenseDomainModel{
			LicenseID:    licenseID,
			Domain:       host,
			Status:       string(domain.DomainStatusActive),
			RegisteredAt: at,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return domain.LicenseDomain{}, err
	}
	return toDomainLicenseDomain(out), nil
}
