package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ── Pricing & discount ───────────────────────────────────────────────────────
// Everything here is a pure function of the cart lines and the discount the
// operator typed. The discount is an absolute currency amount, never a
// percentage.

// Totals is the derived money view of a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal is Σ unitPrice × quantity.
func Subtotal(lines []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// leading number of a form input: optional sign, digits with an optional
// fraction (or a bare fraction), optional exponent. "Infinity" is accepted
// as well since lenient float parsing understands it.
var discountPrefix = regexp.MustCompile(`^[+-]?(Infinity|\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseDiscount reads the leading decimal number of raw, ignoring leading
// whitespace and any trailing garbage ("12,50" reads as 12, "7abc" as 7).
// Input without a numeric prefix reads as zero. Values beyond float range
// saturate at ±MaxFloat64.
func ParseDiscount(raw string) decimal.Decimal {
	m := discountPrefix.FindString(strings.TrimLeft(raw, " \t\r\n\v\f"))
	if m == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !isRangeErr(err) {
		return decimal.Zero
	}
	switch {
	case math.IsInf(f, 1):
		return decimal.NewFromFloat(math.MaxFloat64)
	case math.IsInf(f, -1):
		return decimal.NewFromFloat(-math.MaxFloat64)
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.NewFromFloat(f)
	}
	return d
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// ClampDiscount bounds d to [0, subtotal].
func ClampDiscount(d, subtotal decimal.Decimal) decimal.Decimal {
	if d.IsNegative() || subtotal.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

// currencyPlaces matches the decimal(12,2) money columns of a Sale.
const currencyPlaces = 2

// ApplicableDiscount rounds d to cents and clamps it to [0, subtotal].
func ApplicableDiscount(d, subtotal decimal.Decimal) decimal.Decimal {
	return ClampDiscount(d.Round(currencyPlaces), subtotal)
}

// ComputeTotals recomputes everything from scratch. The applied discount is
// clamped against the current subtotal again, so lines removed after the
// discount was set can never push the total below zero.
func ComputeTotals(lines []CartLine, discount decimal.Decimal) Totals {
	sub := Subtotal(lines)
	d := ApplicableDiscount(discount, sub)
	return Totals{Subtotal: sub, Discount: d, Total: sub.Sub(d)}
}
