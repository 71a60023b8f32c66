package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string          `json:"name"          validate:"required,min=1,max=120"`
	Barcode       string          `json:"barcode"       validate:"required,min=1,max=32"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" validate:"min=0"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"  validate:"min=0"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"          validate:"omitempty,min=1,max=120"`
	Barcode       *string          `json:"barcode"       validate:"omitempty,min=1,max=32"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ProductFilter is bound from the query string of GET /v1/productos.
// Search matches name (case-insensitive) or barcode substrings.
type ProductFilter struct {
	Search string `form:"q"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Barcode       string          `json:"barcode"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// PriceLookupResponse is returned by the public price check endpoint.
type PriceLookupResponse struct {
	Name           string          `json:"name"`
	Barcode        string          `json:"barcode"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	AvailableStock *int            `json:"availableStock"`
}
