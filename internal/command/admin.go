package command

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/storefront-client/internal/domain/order"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/query"
)

// Roles an account can hold
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

func (h *Handler) requireAdmin(ctx context.Context) error {
	s, err := h.requireSession(ctx)
	if err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// UpdateOrderStatus changes an order's status from the back office
func (h *Handler) UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatus) (*commerce.StatusUpdate, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(cmd.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if cmd.OrderID <= 0 {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidCommand)
	}

	update, err := h.commerce.UpdateOrderStatus(ctx, cmd.OrderID, string(status))
	if err != nil {
		return nil, err
	}
	log.Printf("[Admin] Order %d set to %s", update.OrderID, update.NewStatus)
	return update, nil
}

// AdminProducts lists the whole catalog, newest first
func (h *Handler) AdminProducts(ctx context.Context) ([]*query.ProductReadModel, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	products, err := h.commerce.AdminListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return query.ToProductReadModels(products), nil
}

func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*commerce.Product, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidCommand)
	}
	category, err := parseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	variants, err := variantInputs(cmd.Variants)
	if err != nil {
		return nil, err
	}

	product, err := h.commerce.AdminCreateProduct(ctx, commerce.ProductInput{
		Name:        name,
		Description: cmd.Description,
		Category:    category,
		Variants:    variants,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Admin] Product %d created with %d variants", product.ID, len(product.Variants))
	return product, nil
}

func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) (*commerce.Product, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if cmd.ProductID <= 0 {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidCommand)
	}
	// an empty set is dropped from the request body, which would keep the variants
	if cmd.Variants != nil && len(cmd.Variants) == 0 {
		return nil, fmt.Errorf("%w: a product keeps at least one variant", ErrInvalidCommand)
	}

	category, err := parseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	variants, err := variantInputs(cmd.Variants)
	if err != nil {
		return nil, err
	}

	product, err := h.commerce.AdminUpdateProduct(ctx, cmd.ProductID, commerce.ProductInput{
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		Category:    category,
		Variants:    variants,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Admin] Product %d updated", product.ID)
	return product, nil
}

func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) error {
	if err := h.requireAdmin(ctx); err != nil {
		return err
	}
	if cmd.ProductID <= 0 {
		return fmt.Errorf("%w: product id is required", ErrInvalidCommand)
	}
	if err := h.commerce.AdminDeleteProduct(ctx, cmd.ProductID); err != nil {
		return err
	}
	log.Printf("[Admin] Product %d deleted", cmd.ProductID)
	return nil
}

func (h *Handler) AdminUsers(ctx context.Context) ([]commerce.AdminUser, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err := h.commerce.AdminListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (h *Handler) UpdateUser(ctx context.Context, cmd UpdateUser) (*commerce.AdminUser, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if cmd.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidCommand)
	}
	if cmd.Role == nil && cmd.IsActive == nil && cmd.IsStaff == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidCommand)
	}

	update := commerce.AdminUserUpdate{IsActive: cmd.IsActive, IsStaff: cmd.IsStaff}
	if cmd.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*cmd.Role))
		if role != RoleAdmin && role != RoleCustomer {
			return nil, fmt.Errorf("%w: role must be %s or %s, got %q", ErrInvalidCommand, RoleAdmin, RoleCustomer, *cmd.Role)
		}
		update.Role = &role
	}

	user, err := h.commerce.AdminUpdateUser(ctx, cmd.UserID, update)
	if err != nil {
		return nil, err
	}
	log.Printf("[Admin] User %d updated", user.ID)
	return user, nil
}

// parseCategory allows an empty category, which leaves it unset
func parseCategory(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	key, err := query.ParseCategory(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return key, nil
}

func variantInputs(variants []ProductVariant) ([]commerce.VariantInput, error) {
	if variants == nil {
		return nil, nil
	}
	inputs := make([]commerce.VariantInput, 0, len(variants))
	for i, v := range variants {
		if v.Price.IsNegative() {
			return nil, fmt.Errorf("%w: variant %d has a negative price", ErrInvalidCommand, i+1)
		}
		if v.Stock < 0 {
			return nil, fmt.Errorf("%w: variant %d has negative stock", ErrInvalidCommand, i+1)
		}
		inputs = append(inputs, commerce.VariantInput{
			ID:    v.ID,
			Size:  v.Size,
			Color: v.Color,
			Price: v.Price.Round(2),
			Stock: v.Stock,
		})
	}
	return inputs, nil
}
