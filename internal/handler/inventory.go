package handler

import (
	"net/http"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) List(c *gin.Context) {
	var filter dto.InventoryFilter
	if !bindQuery(c, &filter) {
		return
	}
	rows, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if alerts == nil {
		alerts = []dto.LowStockAlertResponse{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Upsert(c *gin.Context) {
	id, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	var req dto.UpsertInventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Upsert(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
