package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codehaven/licensing-service/internal/domain"
	"github.com/codehaven/licensing-service/internal/ports"
)

type licenseRepository struct {
	db *gorm.DB
}

func (r *licenseRepository) GetByPurchaseCode(ctx context.Context, productID uuid.UUID, purchaseCode string) (domain.License, error) {
	var rec licenseModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND purchase_code = ?", productID, purchaseCode).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.License{}, domain.ErrLicenseNotFound
		}
		return domain.License{}, err
	}
	return toDomainLicense(rec), nil
}

func (r *licenseRepository) GetByKey(ctx context.Context, licenseKey string) (domain.License, error) {
	var rec licenseModel
	if err := r.db.WithContext(ctx).Where("license_key = ?", licenseKey).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.License{}, domain.ErrLicenseNotFound
		}
		return domain.License{}, err
	}
	return toDomainLicense(rec), nil
}

func (r *licenseRepository) Create(ctx context.Context, params ports.LicenseCreateParams) (domain.License, error) {
	rec := licenseModel{
		PurchaseCode:     params.PurchaseCode,
		LicenseKey:       params.LicenseKey,
		ProductID:        params.ProductID,
		LicenseType:      string(params.LicenseType),
		Status:           string(domain.LicenseStatusActive),
		MaxDomains:       params.MaxDomains,
		LicenseExpiresAt: params.LicenseExpiresAt,
		SupportExpiresAt: params.SupportExpiresAt,
		CreatedAt:        params.CreatedAt,
		UpdatedAt:        params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.License{}, domain.ErrConflict
		}
		return domain.License{}, err
	}
	return toDomainLicense(rec), nil
}

// UpdateStatus applies a compare-and-set transition so concurrent admin calls
// cannot skip states. Zero rows affected on an existing license means the
// stored status no longer matches the expected from-state.
func (r *licenseRepository) UpdateStatus(ctx context.Context, licenseID uuid.UUID, from, to domain.LicenseStatus, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("license_id = ?", licenseID).
		Where("status = ?", string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&licenseModel{}).Where("license_id = ?", licenseID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrLicenseNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *licenseRepository) StatusCounts(ctx context.Context, now time.Time) (ports.LicenseStatusCounts, error) {
	counts := ports.LicenseStatusCounts{}

	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ports.LicenseStatusCounts{}, err
	}
	for _, item := range rows {
		counts.Total += item.N
		switch domain.LicenseStatus(item.Status) {
		case domain.LicenseStatusActive:
			counts.Active += item.N
		case domain.LicenseStatusSuspended:
			counts.Suspended += item.N
		case domain.LicenseStatusRevoked:
			counts.Revoked += item.N
		}
	}

	// Expired is derived, not stored: count active rows whose term lapsed and
	// shift them out of the active bucket.
	var expired int64
	err = r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("status = ?", string(domain.LicenseStatusActive)).
		Where("license_expires_at IS NOT NULL AND license_expires_at < ?", now).
		Count(&expired).Error
	if err != nil {
		return ports.LicenseStatusCounts{}, err
	}
	counts.Expired = expired
	counts.Active -= expired

	return counts, nil
}
