package postgres

import (
	"context"
	"errors"
	"fmt"

	"artMarket/business/recommend"
	"artMarket/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ recommend.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, fmt.Errorf("product %d: %w", id, recommend.ErrProductNotFound)
		}
		return domain.Product{}, fmt.Errorf("find product %d: %w", id, err)
	}

	return product, nil
}

func (r *ProductRepository) FindAvailable(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("status = ? AND stock > 0", domain.ProductStatusAvailable).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("find available products: %w", err)
	}

	return products, nil
}
