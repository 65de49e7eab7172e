package query

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/example/storefront-client/internal/domain/order"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// Source is the part of the commerce API the read side uses
type Source interface {
	ListOrders(ctx context.Context) ([]commerce.Order, error)
	ListProducts(ctx context.Context) ([]commerce.Product, error)
	ListProductReviews(ctx context.Context, productID int64) ([]commerce.Review, error)
	Me(ctx context.Context) (*commerce.Profile, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// Orders

// ListOrders returns the signed-in user's orders, newest first
func (h *Handler) ListOrders(ctx context.Context) ([]*OrderReadModel, error) {
	remote, err := h.source.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*OrderReadModel, 0, len(remote))
	for _, o := range remote {
		orders = append(orders, toOrderReadModel(o))
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

// GetOrder finds one of the user's orders, as the payment confirmation view does
func (h *Handler) GetOrder(ctx context.Context, id int64) (*OrderReadModel, error) {
	orders, err := h.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
}

func toOrderReadModel(o commerce.Order) *OrderReadModel {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		log.Printf("[Query] Order %d has unrecognised status %q", o.ID, o.Status)
		status = order.Status(o.Status)
	}

	rm := &OrderReadModel{
		ID:               o.ID,
		Status:           status,
		Total:            o.TotalAmount,
		CreatedAt:        o.CreatedAt,
		InvoiceNumber:    o.InvoiceNumber,
		InvoiceAvailable: o.InvoiceAvailable || status.InvoiceAvailable(),
		Items:            make([]OrderItemReadModel, 0, len(o.Items)),
	}
	if rm.InvoiceNumber == "" && !o.CreatedAt.IsZero() {
		rm.InvoiceNumber = order.InvoiceNumber(o.ID, o.CreatedAt)
	}
	for _, item := range o.Items {
		rm.Items = append(rm.Items, OrderItemReadModel{
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return rm
}

// Products

func (h *Handler) ListProducts(ctx context.Context) ([]*ProductReadModel, error) {
	remote, err := h.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return ToProductReadModels(remote), nil
}

// SearchProducts lists the catalog narrowed by filter, keeping catalog order
func (h *Handler) SearchProducts(ctx context.Context, filter ProductFilter) ([]*ProductReadModel, error) {
	products, err := h.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*ProductReadModel, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// ToProductReadModels converts catalog records, marking which variants are in stock
func ToProductReadModels(remote []commerce.Product) []*ProductReadModel {
	products := make([]*ProductReadModel, 0, len(remote))
	for _, p := range remote {
		rm := &ProductReadModel{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Variants:    make([]VariantReadModel, 0, len(p.Variants)),
		}
		for _, v := range p.Variants {
			rm.Variants = append(rm.Variants, VariantReadModel{
				ID:      v.ID,
				Size:    v.Size,
				Color:   v.Color,
				Price:   v.Price,
				Stock:   v.Stock,
				InStock: v.Stock > 0,
			})
		}
		products = append(products, rm)
	}
	return products
}

// FindVariant looks a variant up in the catalog and returns it with its product
func (h *Handler) FindVariant(ctx context.Context, variantID int64) (*ProductReadModel, *VariantReadModel, error) {
	products, err := h.ListProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range products {
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				return p, &p.Variants[i], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: %d", ErrVariantNotFound, variantID)
}

// Reviews

// ProductReviews loads a product's reviews and averages their ratings to one decimal
func (h *Handler) ProductReviews(ctx context.Context, productID int64) (*ProductReviews, error) {
	remote, err := h.source.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := &ProductReviews{
		ProductID: productID,
		Count:     len(remote),
		Average:   decimal.Zero,
		Reviews:   make([]ReviewReadModel, 0, len(remote)),
	}
	sum := 0
	for _, r := range remote {
		sum += r.Rating
		out.Reviews = append(out.Reviews, ReviewReadModel{
			ID:        r.ID,
			Author:    r.UserEmail,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	sort.SliceStable(out.Reviews, func(i, j int) bool {
		return out.Reviews[i].CreatedAt.After(out.Reviews[j].CreatedAt)
	})
	if out.Count > 0 {
		out.Average = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(out.Count))).Round(1)
	}
	return out, nil
}

// Profile

func (h *Handler) Profile(ctx context.Context) (*commerce.Profile, error) {
	p, err := h.source.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}
