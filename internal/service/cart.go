package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart. Name, Barcode and UnitPrice are
// copied when the line is created and do not follow later catalog edits.
type CartLine struct {
	ProductID uuid.UUID
	Name      string
	Barcode   string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// StockLookup is the part of the inventory ledger the cart reads.
type StockLookup interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*model.InventoryRecord, error)
}

// Cart is an ordered set of lines keyed by product id. Every mutation is
// checked against the ledger's current quantity at call time; nothing is
// reserved. A product without an inventory record is not limited.
//
// Cart is not safe for concurrent use; the checkout session serialises
// access to it.
type Cart struct {
	stock StockLookup
	lines []CartLine
}

func NewCart(stock StockLookup) *Cart {
	return &Cart{stock: stock}
}

// AddLine adds one unit of p, creating the line on first add.
func (c *Cart) AddLine(ctx context.Context, p *model.Product) error {
	idx := c.index(p.ID)
	inCart := 0
	if idx >= 0 {
		inCart = c.lines[idx].Quantity
	}

	limit, bounded, err := c.limit(ctx, p.ID)
	if err != nil {
		return err
	}
	if bounded && inCart+1 > limit {
		return notice(ErrInsufficientStock, "Estoque insuficiente para %s", p.Name)
	}

	if idx >= 0 {
		c.lines[idx].Quantity++
		return nil
	}
	c.lines = append(c.lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		Quantity:  1,
		UnitPrice: p.SellingPrice,
	})
	return nil
}

// ChangeQuantity applies a signed delta. The result never drops below one;
// RemoveLine is the way to take a product out.
func (c *Cart) ChangeQuantity(ctx context.Context, productID uuid.UUID, delta int) error {
	idx := c.index(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	line := &c.lines[idx]

	newQ := line.Quantity + delta
	if newQ < 1 {
		newQ = 1
	}

	limit, bounded, err := c.limit(ctx, productID)
	if err != nil {
		return err
	}
	if bounded && newQ > limit {
		return notice(ErrInsufficientStock, "Estoque insuficiente para %s", line.Name)
	}
	line.Quantity = newQ
	return nil
}

// integer prefix of a quantity input, sign included.
var quantityPrefix = regexp.MustCompile(`^[+-]?\d+`)

// maxQuantity caps absurdly long inputs instead of overflowing.
const maxQuantity = math.MaxInt32

// SetQuantity sets the quantity from the raw text of the quantity field.
// Only the leading integer is read ("3 un" is 3, "2.9" is 2). Input that
// does not start with a positive integer is ignored and returns nil.
func (c *Cart) SetQuantity(ctx context.Context, productID uuid.UUID, raw string) error {
	idx := c.index(productID)
	if idx < 0 {
		return ErrLineNotFound
	}

	q, ok := ParseQuantity(raw)
	if !ok {
		return nil
	}

	limit, bounded, err := c.limit(ctx, productID)
	if err != nil {
		return err
	}
	if bounded && q > limit {
		return notice(ErrInsufficientStock, "Estoque insuficiente. Máximo disponível: %d", limit)
	}
	c.lines[idx].Quantity = q
	return nil
}

// ParseQuantity returns the positive leading integer of raw.
func ParseQuantity(raw string) (int, bool) {
	m := quantityPrefix.FindString(strings.TrimLeft(raw, " \t\r\n\v\f"))
	if m == "" {
		return 0, false
	}
	// ParseInt saturates on overflow, which the cap below absorbs.
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil && !isRangeErr(err) {
		return 0, false
	}
	if n <= 0 {
		return 0, false
	}
	if n > maxQuantity {
		n = maxQuantity
	}
	return int(n), true
}

// RemoveLine drops the product from the cart without any stock check.
func (c *Cart) RemoveLine(productID uuid.UUID) error {
	idx := c.index(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return nil
}

func (c *Cart) Clear() { c.lines = nil }

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of distinct products.
func (c *Cart) Len() int { return len(c.lines) }

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Quantity returns the quantity of a product, zero when it is not in the cart.
func (c *Cart) Quantity(productID uuid.UUID) int {
	if idx := c.index(productID); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

func (c *Cart) index(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// limit reads the current stock of a product. bounded is false when the
// product has no inventory record.
func (c *Cart) limit(ctx context.Context, productID uuid.UUID) (limit int, bounded bool, err error) {
	rec, err := c.stock.FindByProductID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rec.CurrentQuantity, true, nil
}
