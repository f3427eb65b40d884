package domain

import (
	"time"

	"gorm.io/datatypes"
)

// UserPreferenceState holds the raw weighted accumulator for a user plus the
// normalized projection scoring reads. Both arrays are dense and aligned to
// the feature space order; WeightSum is the sum of all event betas ever
// applied. Created lazily on the first event, never deleted.
type UserPreferenceState struct {
	UserID      uint                         `gorm:"column:user_id;primaryKey" json:"user_id"`
	Accumulator datatypes.JSONSlice[float64] `gorm:"column:accumulator;type:jsonb" json:"accumulator"`
	WeightSum   float64                      `gorm:"column:weight_sum;type:numeric" json:"weight_sum"`
	Vector      datatypes.JSONSlice[float64] `gorm:"column:vector;type:jsonb" json:"vector"`
	LastUpdated time.Time                    `gorm:"column:last_updated;autoUpdateTime" json:"last_updated"`
}

func (UserPreferenceState) TableName() string {
	return "user_preference_states"
}
