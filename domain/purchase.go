package domain

import (
	"time"

	"gorm.io/datatypes"
)

// PurchaseEvent is an immutable historical purchase record. Categories and
// techniques are denormalized onto the row so user vectors can be rebuilt
// without joining the catalog.
type PurchaseEvent struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	UserID       uint                        `gorm:"column:user_id;not null;index" json:"user_id"`
	ProductID    uint64                      `gorm:"column:product_id;not null" json:"product_id"`
	Quantity     int                         `gorm:"column:quantity;not null" json:"quantity"`
	TotalPaid    float64                     `gorm:"column:total_paid;type:numeric" json:"total_paid"`
	Categories   datatypes.JSONSlice[string] `gorm:"column:categories;type:jsonb" json:"categories"`
	Techniques   datatypes.JSONSlice[string] `gorm:"column:techniques;type:jsonb" json:"techniques"`
	PurchaseDate time.Time                   `gorm:"column:purchase_date" json:"purchase_date"`
}

func (PurchaseEvent) TableName() string {
	return "purchase_events"
}
