package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Barcode is the scan key and must be unique.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string          `gorm:"index;not null" json:"name"`
	Barcode       string          `gorm:"uniqueIndex;not null" json:"barcode"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"purchasePrice"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sellingPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
