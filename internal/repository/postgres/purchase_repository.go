package postgres

import (
	"context"
	"fmt"

	"artMarket/business/recommend"
	"artMarket/domain"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

var _ recommend.PurchaseRepository = (*PurchaseRepository)(nil)

func (r *PurchaseRepository) FindByUser(ctx context.Context, userID uint) ([]domain.PurchaseEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.PurchaseEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchase_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("find purchases for user %d: %w", userID, err)
	}

	return events, nil
}

func (r *PurchaseRepository) ListUserIDs(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.PurchaseEvent{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list purchasing user ids: %w", err)
	}

	return ids, nil
}
