package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the accepted tender types.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentPix    PaymentMethod = "pix"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix:
		return true
	}
	return false
}

// Sale is an immutable record of a completed checkout.
// It is only ever appended; nothing updates or deletes it afterwards.
type Sale struct {
	ID    uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	// TotalDiscount is the absolute discount applied to the whole cart.
	TotalDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalDiscount"`
	// Total is net of TotalDiscount.
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	SellerName    string          `gorm:"not null" json:"sellerName"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
}

// SaleItem is one line of a Sale. ProductID is a weak reference: the product
// may be deleted later without affecting the sale.
// Discount is always written as zero; only the aggregate lives on the Sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	Position  int             `gorm:"not null" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
}
