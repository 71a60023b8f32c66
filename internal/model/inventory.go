package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock status buckets used by the inventory listing.
const (
	StockLow    = "low"
	StockNormal = "normal"
	StockHigh   = "high"
)

// InventoryRecord holds the stock levels of a single product.
// There is at most one record per ProductID, and a product may have none.
// Quantities are not validated and can go negative after a sale.
type InventoryRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"productId"`
	CurrentQuantity int       `gorm:"not null;default:0" json:"currentQuantity"`
	MinQuantity     int       `gorm:"not null;default:0" json:"minQuantity"`
	MaxQuantity     int       `gorm:"not null;default:0" json:"maxQuantity"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName keeps the collection name used by the rest of the system.
func (InventoryRecord) TableName() string { return "inventory" }

// Status classifies the record against its min/max thresholds.
func (r InventoryRecord) Status() string {
	switch {
	case r.CurrentQuantity < r.MinQuantity:
		return StockLow
	case r.CurrentQuantity > r.MaxQuantity:
		return StockHigh
	default:
		return StockNormal
	}
}

// IsLow reports whether the current quantity is below the minimum.
func (r InventoryRecord) IsLow() bool { return r.CurrentQuantity < r.MinQuantity }
