package dto

import "github.com/shopspring/decimal"

// SaleFilter is bound from the query string of GET /v1/ventas.
// From and To are inclusive dates (YYYY-MM-DD); empty means unbounded.
type SaleFilter struct {
	From  string `form:"from"  validate:"omitempty,datetime=2006-01-02"`
	To    string `form:"to"    validate:"omitempty,datetime=2006-01-02"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Items         []SaleItemResponse `json:"items"`
	TotalDiscount decimal.Decimal    `json:"totalDiscount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	SellerName    string             `json:"sellerName"`
	CreatedAt     string             `json:"createdAt"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
