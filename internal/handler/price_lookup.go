package handler

import (
	"net/http"

	"bebidaspos/internal/service"

	"github.com/gin-gonic/gin"
)

// PriceLookupHandler serves the public price check endpoint.
// No authentication required and no side effects besides the cache.
type PriceLookupHandler struct{ svc service.ProductService }

func NewPriceLookupHandler(svc service.ProductService) *PriceLookupHandler {
	return &PriceLookupHandler{svc: svc}
}

func (h *PriceLookupHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.svc.LookupPrice(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
