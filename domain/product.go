package domain

import (
	"time"

	"gorm.io/datatypes"
)

const ProductStatusAvailable = "AVAILABLE"

// Product is the catalog entry the recommender scores. The catalog itself is
// owned by the marketplace; this service only reads it.
type Product struct {
	ID         uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string                      `gorm:"column:name;type:text" json:"name"`
	Price      float64                     `gorm:"column:price;type:numeric" json:"price"`
	Stock      int                         `gorm:"column:stock" json:"stock"`
	Status     string                      `gorm:"column:status;type:text" json:"status"`
	Categories datatypes.JSONSlice[string] `gorm:"column:categories;type:jsonb" json:"categories"`
	Techniques datatypes.JSONSlice[string] `gorm:"column:techniques;type:jsonb" json:"techniques"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// Available reports whether the product can be recommended at all.
func (p Product) Available() bool {
	return p.Status == ProductStatusAvailable && p.Stock > 0
}
