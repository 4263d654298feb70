package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/codehaven/licensing-service/internal/domain"
	"github.com/codehaven/licensing-service/internal/ports"
)

type verificationLogRepository struct {
	db *gorm.DB
}

func (r *verificationLogRepository) Insert(ctx context.Context, entry domain.VerificationLogEntry) error {
	rec := verificationLogModel{
		LicenseID:          entry.LicenseID,
		ProductSlug:        entry.ProductSlug,
		Domain:             entry.Domain,
		PurchaseCodeMasked: entry.PurchaseCodeMasked,
		Status:             entry.Status,
		Reason:             entry.Reason,
		Method:             entry.Method,
		IPAddress:          nullableString(entry.IPAddress),
		CreatedAt:          entry.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *verificationLogRepository) OutcomeCounts(ctx context.Context, since time.Time) (ports.VerificationOutcomeCounts, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&verificationLogModel{}).
		Select("status, count(*) as n").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ports.VerificationOutcomeCounts{}, err
	}

	counts := ports.VerificationOutcomeCounts{}
	for _, item := range rows {
		counts.Total += item.N
		switch item.Status {
		case domain.VerificationStatusSuccess:
			counts.Success += item.N
		case domain.VerificationStatusFailed:
			counts.Failed += item.N
		case domain.VerificationStatusRateLimited:
			counts.RateLimited += item.N
		}
	}
	return counts, nil
}

func (r *verificationLogRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]ports.ProductVerificationCount, error) {
	type row struct {
		ProductSlug string
		N           int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&verificationLogModel{}).
		Select("product_slug, count(*) as n").
		Where("created_at >= ?", since).
		Where("product_slug <> ''").
		Group("product_slug").
		Order("n DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]ports.ProductVerificationCount, 0, len(rows))
	for _, item := range rows {
		result = append(result, ports.ProductVerificationCount{ProductSlug: item.ProductSlug, Count: item.N})
	}
	return result, nil
}
