package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidVariant  = errors.New("variant_id is required")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Line is one (variant, quantity) pairing held in the guest cart.
// JSON keys match what browser sessions of the storefront persisted.
type Line struct {
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal returns unit price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate checks a line about to be added
func (l Line) Validate() error {
	if l.VariantID <= 0 {
		return ErrInvalidVariant
	}
	if l.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// GuestCart is the ordered sequence of lines kept for an anonymous visitor.
// No two lines share a VariantID.
type GuestCart []Line

// Total returns the sum of line subtotals rounded to two decimals
func (g GuestCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range g {
		total = total.Add(line.Subtotal())
	}
	return total.Round(2)
}

// Add merges line into the cart by variant, defaulting quantity to 1
func (g GuestCart) Add(line Line) GuestCart {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	out := g.clone()
	for i := range out {
		if out[i].VariantID == line.VariantID {
			out[i].Quantity += line.Quantity
			return out
		}
	}
	return append(out, line)
}

// WithQuantity returns a copy with the quantity of the line at index replaced
func (g GuestCart) WithQuantity(index, quantity int) (GuestCart, error) {
	if quantity < 1 {
		return g, ErrInvalidQuantity
	}
	if index < 0 || index >= len(g) {
		return g, ErrLineNotFound
	}
	out := g.clone()
	out[index].Quantity = quantity
	return out, nil
}

// Without returns a copy with the line at index removed
func (g GuestCart) Without(index int) (GuestCart, error) {
	if index < 0 || index >= len(g) {
		return g, ErrLineNotFound
	}
	out := make(GuestCart, 0, len(g)-1)
	out = append(out, g[:index]...)
	return append(out, g[index+1:]...), nil
}

// normalize folds lines sharing a variant and drops lines that can never be merged
func (g GuestCart) normalize() GuestCart {
	out := make(GuestCart, 0, len(g))
	for _, line := range g {
		if line.VariantID <= 0 || line.Quantity <= 0 {
			continue
		}
		out = out.Add(line)
	}
	return out
}

func (g GuestCart) clone() GuestCart {
	out := make(GuestCart, len(g))
	copy(out, g)
	return out
}
