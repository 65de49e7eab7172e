package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "auth/login/", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first access token
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "auth/register/", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the authenticated user
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "auth/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCart(ctx context.Context) ([]CartLine, error) {
	var out cartLines
	if err := c.do(ctx, http.MethodGet, "cart/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCartLine adds quantity of a variant to the remote cart.
// The remote increments an existing line for the same variant.
func (c *Client) AddCartLine(ctx context.Context, variantID int64, quantity int) error {
	body := struct {
		Variant  int64 `json:"variant"`
		Quantity int   `json:"quantity"`
	}{variantID, quantity}
	return c.do(ctx, http.MethodPost, "cart/", body, nil)
}

func (c *Client) UpdateCartLine(ctx context.Context, lineID int64, quantity int) error {
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("cart/%d/", lineID), body, nil)
}

func (c *Client) DeleteCartLine(ctx context.Context, lineID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("cart/%d/", lineID), nil, nil)
}

// CreatePaymentIntent opens a pending order for the current remote cart
func (c *Client) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*PaymentIntent, error) {
	body := struct {
		Amount json.Number `json:"amount"`
	}{json.Number(amount.StringFixed(2))}

	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "orders/create-payment-intent/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out orders
	if err := c.do(ctx, http.MethodGet, "orders/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts returns the public catalog
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out products
	if err := c.do(ctx, http.MethodGet, "products/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus sets the status of any order. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*StatusUpdate, error) {
	body := struct {
		Status string `json:"status"`
	}{status}

	var out StatusUpdate
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("orders/admin/orders/%d/status/", orderID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile patches the authenticated user's profile and returns the stored record
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodPatch, "auth/me/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{current, next}
	return c.do(ctx, http.MethodPost, "auth/change-password/", body, nil)
}

// ListProductReviews returns a product's reviews, newest first. No login needed.
func (c *Client) ListProductReviews(ctx context.Context, productID int64) ([]Review, error) {
	var out reviews
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("products/%d/reviews/", productID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitReview creates the user's review of a product or replaces their earlier one.
// The API only accepts reviews from users with a paid order containing the product.
func (c *Client) SubmitReview(ctx context.Context, productID int64, review ReviewInput) (*Review, error) {
	var out Review
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("products/%d/reviews/", productID), review, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
