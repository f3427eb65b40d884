package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artMarket/business/recommend"
	"artMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

var _ recommend.PreferenceRepository = (*PreferenceRepository)(nil)

func (r *PreferenceRepository) GetState(ctx context.Context, userID uint) (*domain.UserPreferenceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var state domain.UserPreferenceState
	err := r.db.WithContext(ctx).First(&state, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preference state for user %d: %w", userID, err)
	}

	return &state, nil
}

func (r *PreferenceRepository) CreateState(ctx context.Context, userID uint) (*domain.UserPreferenceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	state := &domain.UserPreferenceState{
		UserID:      userID,
		LastUpdated: time.Now(),
	}

	// Racing creators are harmless: both start from the zero state, and the
	// per-user lock in the updater serializes the follow-up save.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(state).Error
	if err != nil {
		return nil, fmt.Errorf("create preference state for user %d: %w", userID, err)
	}

	return state, nil
}

func (r *PreferenceRepository) SaveState(ctx context.Context, state *domain.UserPreferenceState) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
	if err != nil {
		return fmt.Errorf("save preference state for user %d: %w", state.UserID, err)
	}

	return nil
}

func (r *PreferenceRepository) ListUserIDs(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.UserPreferenceState{}).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list preference user ids: %w", err)
	}

	return ids, nil
}
