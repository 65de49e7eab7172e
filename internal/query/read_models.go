package query

import (
	"time"

	"github.com/example/storefront-client/internal/domain/order"
	"github.com/shopspring/decimal"
)

type OrderItemReadModel struct {
	ProductName string          `json:"product"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderReadModel struct {
	ID               int64                `json:"id"`
	Status           order.Status         `json:"status"`
	Total            decimal.Decimal      `json:"total"`
	CreatedAt        time.Time            `json:"created_at"`
	InvoiceNumber    string               `json:"invoice_number"`
	InvoiceAvailable bool                 `json:"invoice_available"`
	Items            []OrderItemReadModel `json:"items"`
}

// ItemCount is the total number of units in the order
func (o *OrderReadModel) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

type VariantReadModel struct {
	ID      int64           `json:"id"`
	Size    string          `json:"size"`
	Color   string          `json:"color"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	InStock bool            `json:"in_stock"`
}

type ProductReadModel struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Variants    []VariantReadModel `json:"variants"`
}

// PriceRange returns the lowest and highest variant price
func (p *ProductReadModel) PriceRange() (low, high decimal.Decimal) {
	for i, v := range p.Variants {
		if i == 0 || v.Price.LessThan(low) {
			low = v.Price
		}
		if i == 0 || v.Price.GreaterThan(high) {
			high = v.Price
		}
	}
	return low, high
}

// InStock reports whether any variant can be bought
func (p *ProductReadModel) InStock() bool {
	for _, v := range p.Variants {
		if v.InStock {
			return true
		}
	}
	return false
}

type ReviewReadModel struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductReviews is a product's reviews with their average rating, newest first
type ProductReviews struct {
	ProductID int64             `json:"product_id"`
	Count     int               `json:"count"`
	Average   decimal.Decimal   `json:"average"`
	Reviews   []ReviewReadModel `json:"reviews"`
}
