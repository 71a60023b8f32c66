package dto

// UpsertInventoryRequest replaces the stock levels of a product.
// No ordering between min and max is enforced.
type UpsertInventoryRequest struct {
	CurrentQuantity *int `json:"currentQuantity" validate:"required"`
	MinQuantity     *int `json:"minQuantity"     validate:"required"`
	MaxQuantity     *int `json:"maxQuantity"     validate:"required"`
}

// InventoryFilter is bound from the query string of GET /v1/inventario.
type InventoryFilter struct {
	Status string `form:"status,default=all" validate:"oneof=all low normal high"`
	Search string `form:"q"`
}

type InventoryResponse struct {
	ID              string `json:"id"`
	ProductID       string `json:"productId"`
	CurrentQuantity int    `json:"currentQuantity"`
	MinQuantity     int    `json:"minQuantity"`
	MaxQuantity     int    `json:"maxQuantity"`
	Status          string `json:"status"`
	UpdatedAt       string `json:"updatedAt"`
}

// InventoryRowResponse is a catalog entry joined with its stock levels.
// Inventory is nil for products that have no record yet.
type InventoryRowResponse struct {
	Product   ProductResponse    `json:"product"`
	Inventory *InventoryResponse `json:"inventory"`
}

// LowStockAlertResponse describes one product below its minimum quantity.
type LowStockAlertResponse struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	CurrentQuantity int    `json:"currentQuantity"`
	MinQuantity     int    `json:"minQuantity"`
	Deficit         int    `json:"deficit"`
}
