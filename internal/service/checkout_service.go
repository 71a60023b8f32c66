package service

import (
	"context"
	"errors"
	"sync"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"
	"bebidaspos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session phases.
const (
	PhaseIdle                = "idle"
	PhaseConfirmationPending = "confirmation_pending"
)

// unknownSeller is recorded when a sale is confirmed without a username.
const unknownSeller = "unknown"

// ReceiptQueue receives committed sales for receipt generation.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptJobPayload) error
}

// CheckoutService is the single POS session of this process: the cart, the
// discount and payment method typed by the operator, and the two phase
// checkout that turns them into a sale.
//
// Every method returns the resulting session state. On error the state is
// unchanged.
type CheckoutService interface {
	State(ctx context.Context) *dto.POSStateResponse

	AddProduct(ctx context.Context, productID uuid.UUID) (*dto.POSStateResponse, error)
	ScanBarcode(ctx context.Context, barcode string) (*dto.POSStateResponse, error)
	ChangeQuantity(ctx context.Context, productID uuid.UUID, delta int) (*dto.POSStateResponse, error)
	SetQuantity(ctx context.Context, productID uuid.UUID, raw string) (*dto.POSStateResponse, error)
	RemoveLine(ctx context.Context, productID uuid.UUID) (*dto.POSStateResponse, error)
	ClearCart(ctx context.Context) (*dto.POSStateResponse, error)
	ApplyDiscount(ctx context.Context, raw string) (*dto.POSStateResponse, error)
	SetPaymentMethod(ctx context.Context, method string) (*dto.POSStateResponse, error)

	// InitiateCheckout freezes the cart for review.
	InitiateCheckout(ctx context.Context) (*dto.POSStateResponse, error)
	CancelCheckout(ctx context.Context) (*dto.POSStateResponse, error)
	// ConfirmPayment commits the reviewed cart: stock is decremented, the
	// sale appended, and the session reset for the next customer.
	ConfirmPayment(ctx context.Context, sellerName string, customerEmail *string) (*dto.SaleResponse, error)
}

type checkoutService struct {
	mu sync.Mutex

	products  repository.ProductRepository
	inventory repository.InventoryRepository
	sales     repository.SaleRepository
	receipts  ReceiptQueue
	cache     *infra.PriceCache

	cart          *Cart
	discount      decimal.Decimal
	paymentMethod model.PaymentMethod
	phase         string
}

// NewCheckoutService wires the POS session. receipts and cache may be nil.
func NewCheckoutService(
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	sales repository.SaleRepository,
	receipts ReceiptQueue,
	cache *infra.PriceCache,
) CheckoutService {
	return &checkoutService{
		products:      products,
		inventory:     inventory,
		sales:         sales,
		receipts:      receipts,
		cache:         cache,
		cart:          NewCart(inventory),
		paymentMethod: model.PaymentCash,
		phase:         PhaseIdle,
	}
}

func (s *checkoutService) State(_ context.Context) *dto.POSStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ── Cart mutations ───────────────────────────────────────────────────────────

func (s *checkoutService) AddProduct(ctx context.Context, productID uuid.UUID) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		p, err := s.products.FindByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		return s.add(ctx, p)
	})
}

func (s *checkoutService) ScanBarcode(ctx context.Context, barcode string) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		p, err := s.products.FindByBarcode(ctx, barcode)
		if errors.Is(err, repository.ErrNotFound) {
			log.Info().Str("barcode", barcode).Msg("pos: scanned barcode not in catalog")
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		return s.add(ctx, p)
	})
}

func (s *checkoutService) add(ctx context.Context, p *model.Product) error {
	err := s.cart.AddLine(ctx, p)
	if errors.Is(err, ErrInsufficientStock) {
		log.Warn().Str("product_id", p.ID.String()).Int("in_cart", s.cart.Quantity(p.ID)).Msg("pos: add rejected, insufficient stock")
	}
	return err
}

func (s *checkoutService) ChangeQuantity(ctx context.Context, productID uuid.UUID, delta int) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		return s.cart.ChangeQuantity(ctx, productID, delta)
	})
}

func (s *checkoutService) SetQuantity(ctx context.Context, productID uuid.UUID, raw string) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		return s.cart.SetQuantity(ctx, productID, raw)
	})
}

func (s *checkoutService) RemoveLine(_ context.Context, productID uuid.UUID) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		return s.cart.RemoveLine(productID)
	})
}

func (s *checkoutService) ClearCart(_ context.Context) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		s.cart.Clear()
		return nil
	})
}

// ApplyDiscount stores the parsed amount clamped to the current subtotal.
func (s *checkoutService) ApplyDiscount(_ context.Context, raw string) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		s.discount = ApplicableDiscount(ParseDiscount(raw), Subtotal(s.cart.Lines()))
		return nil
	})
}

func (s *checkoutService) SetPaymentMethod(_ context.Context, method string) (*dto.POSStateResponse, error) {
	return s.mutate(func() error {
		m := model.PaymentMethod(method)
		if !m.Valid() {
			return ErrInvalidPaymentMethod
		}
		s.paymentMethod = m
		return nil
	})
}

// mutate runs fn under the session lock, refusing while a checkout is
// awaiting confirmation.
func (s *checkoutService) mutate(fn func() error) (*dto.POSStateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseConfirmationPending {
		return nil, ErrCheckoutPending
	}
	if err := fn(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// ── Checkout ────────────────────────────────────────────────────────────────

func (s *checkoutService) InitiateCheckout(_ context.Context) (*dto.POSStateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseConfirmationPending {
		return s.snapshot(), nil
	}
	if s.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	s.phase = PhaseConfirmationPending
	return s.snapshot(), nil
}

func (s *checkoutService) CancelCheckout(_ context.Context) (*dto.POSStateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseConfirmationPending {
		return nil, ErrNoPendingCheckout
	}
	s.phase = PhaseIdle
	return s.snapshot(), nil
}

func (s *checkoutService) ConfirmPayment(ctx context.Context, sellerName string, customerEmail *string) (*dto.SaleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseConfirmationPending {
		return nil, ErrNoPendingCheckout
	}

	lines := s.cart.Lines()
	totals := ComputeTotals(lines, s.discount)
	if sellerName == "" {
		sellerName = unknownSeller
	}

	sale := model.Sale{
		ID:            uuid.New(),
		TotalDiscount: totals.Discount,
		Total:         totals.Total,
		PaymentMethod: s.paymentMethod,
		SellerName:    sellerName,
	}
	for i, l := range lines {
		sale.Items = append(sale.Items, model.SaleItem{
			ID:        uuid.New(),
			Position:  i,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
			Discount:  decimal.Zero,
		})
	}

	err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		for _, l := range lines {
			// No floor: the ledger may go negative if stock moved since the add.
			if _, err := s.inventory.DecrementTx(tx, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		return s.sales.CreateTx(ctx, tx, &sale)
	})
	if err != nil {
		log.Error().Err(err).Msg("pos: checkout commit failed")
		return nil, err
	}

	s.cart.Clear()
	s.discount = decimal.Zero
	s.phase = PhaseIdle

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("total", sale.Total.StringFixed(2)).
		Str("payment_method", string(sale.PaymentMethod)).
		Int("lines", len(sale.Items)).
		Msg("pos: checkout committed")

	barcodes := make([]string, len(lines))
	for i, l := range lines {
		barcodes[i] = l.Barcode
	}
	invalidatePrices(s.cache, barcodes...)

	if s.receipts != nil {
		payload := worker.ReceiptJobPayload{SaleID: sale.ID.String(), CustomerEmail: customerEmail}
		if err := s.receipts.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("pos: failed to enqueue receipt")
		}
	}
	return saleToResponse(&sale), nil
}

// snapshot must be called with mu held.
func (s *checkoutService) snapshot() *dto.POSStateResponse {
	lines := s.cart.Lines()
	totals := ComputeTotals(lines, s.discount)
	resp := &dto.POSStateResponse{
		Phase:         s.phase,
		Lines:         make([]dto.CartLineResponse, len(lines)),
		ItemCount:     s.cart.ItemCount(),
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: string(s.paymentMethod),
	}
	for i, l := range lines {
		resp.Lines[i] = dto.CartLineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			Barcode:   l.Barcode,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal(),
		}
	}
	return resp
}
