package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

type ScanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// ChangeQuantityRequest carries either a signed delta (+/- buttons) or the
// raw text of the quantity input. Delta wins when both are sent.
type ChangeQuantityRequest struct {
	Delta    *int    `json:"delta"    validate:"required_without=Quantity"`
	Quantity *string `json:"quantity" validate:"required_without=Delta"`
}

// DiscountRequest holds the raw discount input; it is parsed leniently.
type DiscountRequest struct {
	Discount string `json:"discount"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash credit debit pix"`
}

// ConfirmPaymentRequest optionally names a customer e-mail for the receipt.
type ConfirmPaymentRequest struct {
	CustomerEmail *string `json:"customerEmail" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CartLineResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// POSStateResponse is the full view of the active POS session.
type POSStateResponse struct {
	Phase         string             `json:"phase"`
	Lines         []CartLineResponse `json:"lines"`
	ItemCount     int                `json:"itemCount"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
}

// NoticeResponse carries a transient user-facing notice together with the
// unchanged session state.
type NoticeResponse struct {
	Detail string           `json:"detail"`
	State  POSStateResponse `json:"state"`
}
