package commerce

import (
	"context"
	"fmt"
	"net/http"
)

// Back-office endpoints. The API answers 403 for non-admin tokens.

// AdminListProducts returns the whole catalog, newest product first
func (c *Client) AdminListProducts(ctx context.Context) ([]Product, error) {
	var out products
	if err := c.do(ctx, http.MethodGet, "admin/products/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminCreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "admin/products/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminUpdateProduct(ctx context.Context, productID int64, in ProductInput) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("admin/products/%d/", productID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminDeleteProduct(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("admin/products/%d/", productID), nil, nil)
}

// AdminListUsers returns every account, newest first
func (c *Client) AdminListUsers(ctx context.Context) ([]AdminUser, error) {
	var out adminUsers
	if err := c.do(ctx, http.MethodGet, "auth/admin/users/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, userID int64, update AdminUserUpdate) (*AdminUser, error) {
	var out AdminUser
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("auth/admin/users/%d/", userID), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
