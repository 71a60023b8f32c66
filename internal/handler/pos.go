package handler

import (
	"net/http"

	"bebidaspos/internal/apierror"
	"bebidaspos/internal/dto"
	"bebidaspos/internal/middleware"
	"bebidaspos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POSHandler exposes the checkout session. Rejected operations answer with
// the notice and the unchanged session state so the terminal can redraw.
type POSHandler struct{ svc service.CheckoutService }

func NewPOSHandler(svc service.CheckoutService) *POSHandler { return &POSHandler{svc: svc} }

func (h *POSHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State(c.Request.Context()))
}

func (h *POSHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	id, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	h.reply(c)(h.svc.AddProduct(c.Request.Context(), id))
}

func (h *POSHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.reply(c)(h.svc.ScanBarcode(c.Request.Context(), req.Barcode))
}

// ChangeQuantity accepts either a delta from the +/- buttons or the raw
// text of the quantity field.
func (h *POSHandler) ChangeQuantity(c *gin.Context) {
	id, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	var req dto.ChangeQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if req.Delta != nil {
		h.reply(c)(h.svc.ChangeQuantity(ctx, id, *req.Delta))
		return
	}
	h.reply(c)(h.svc.SetQuantity(ctx, id, *req.Quantity))
}

func (h *POSHandler) RemoveItem(c *gin.Context) {
	id, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	h.reply(c)(h.svc.RemoveLine(c.Request.Context(), id))
}

func (h *POSHandler) Clear(c *gin.Context) {
	h.reply(c)(h.svc.ClearCart(c.Request.Context()))
}

func (h *POSHandler) ApplyDiscount(c *gin.Context) {
	var req dto.DiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.reply(c)(h.svc.ApplyDiscount(c.Request.Context(), req.Discount))
}

func (h *POSHandler) SetPaymentMethod(c *gin.Context) {
	var req dto.PaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.reply(c)(h.svc.SetPaymentMethod(c.Request.Context(), req.PaymentMethod))
}

func (h *POSHandler) InitiateCheckout(c *gin.Context) {
	h.reply(c)(h.svc.InitiateCheckout(c.Request.Context()))
}

func (h *POSHandler) CancelCheckout(c *gin.Context) {
	h.reply(c)(h.svc.CancelCheckout(c.Request.Context()))
}

func (h *POSHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if !bindOptional(c, &req) {
		return
	}
	seller := ""
	if claims := middleware.GetClaims(c); claims != nil {
		seller = claims.Username
	}
	sale, err := h.svc.ConfirmPayment(c.Request.Context(), seller, req.CustomerEmail)
	if err != nil {
		h.notice(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *POSHandler) reply(c *gin.Context) func(*dto.POSStateResponse, error) {
	return func(state *dto.POSStateResponse, err error) {
		if err != nil {
			h.notice(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func (h *POSHandler) notice(c *gin.Context, err error) {
	status := statusFor(err)
	if status == 0 {
		respondError(c, err)
		return
	}
	c.JSON(status, dto.NoticeResponse{Detail: err.Error(), State: *h.svc.State(c.Request.Context())})
}
