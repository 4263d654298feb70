package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/codehaven/licensing-service/internal/domain"
)

type productRepository struct {
	db *gorm.DB
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (domain.Product, error) {
	var rec productModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return toDomainProduct(rec), nil
}

func (r *productRepository) GetByEnvatoItemID(ctx context.Context, itemID int64) (domain.Product, error) {
	var rec productModel
	if err := r.db.WithContext(ctx).Where("envato_item_id = ?", itemID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return toDomainProduct(rec), nil
}
