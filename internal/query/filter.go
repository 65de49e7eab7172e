package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownCategory = errors.New("unknown category")

// Categories the storefront sells in
var Categories = []string{"BEAUTY_PRODUCTS", "CLOTHS", "GADGETS", "MOBILES"}

// ParseCategory accepts a category key or its URL slug ("beauty-products")
func ParseCategory(s string) (string, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if !slices.Contains(Categories, key) {
		return "", fmt.Errorf("%w %q, must be one of %v", ErrUnknownCategory, s, Categories)
	}
	return key, nil
}

// ProductFilter narrows the catalog. The zero value matches everything.
type ProductFilter struct {
	Category string
	// Search matches product names case-insensitively
	Search string
	// MaxPrice keeps products whose cheapest variant costs at most this much
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// Matches reports whether p passes every set criterion
func (f ProductFilter) Matches(p *ProductReadModel) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
		return false
	}
	if f.MaxPrice != nil {
		if len(p.Variants) == 0 {
			return false
		}
		if low, _ := p.PriceRange(); low.GreaterThan(*f.MaxPrice) {
			return false
		}
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	return true
}
