package commerce

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AuthResult is returned by login and registration.
// Registration only guarantees Access; the other fields may be empty.
type AuthResult struct {
	Access      string `json:"access"`
	Role        string `json:"role"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	Email       string `json:"email"`
}

func (a *AuthResult) validate() error {
	if a.Access == "" {
		return errors.New("access token missing")
	}
	return nil
}

// CartLine is one entry of the remote cart
type CartLine struct {
	ID          int64           `json:"id"`
	VariantID   int64           `json:"variant"`
	ProductName string          `json:"product"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type cartLines []CartLine

func (c *cartLines) validate() error {
	for i, line := range *c {
		if line.ID <= 0 {
			return fmt.Errorf("cart line %d has no id", i)
		}
		if line.VariantID <= 0 {
			return fmt.Errorf("cart line %d has no variant", i)
		}
	}
	return nil
}

// PaymentIntent is the server-side payment intent created for the current cart
type PaymentIntent struct {
	ClientSecret string `json:"client_secret"`
	OrderID      int64  `json:"order_id"`
}

func (p *PaymentIntent) validate() error {
	if p.ClientSecret == "" {
		return errors.New("client_secret missing")
	}
	if p.OrderID <= 0 {
		return errors.New("order_id missing")
	}
	return nil
}

// OrderItem is a purchased line frozen at order time
type OrderItem struct {
	ProductName string          `json:"product"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Order as listed in the customer's order history
type Order struct {
	ID               int64           `json:"id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	InvoiceNumber    string          `json:"invoice_number"`
	InvoiceAvailable bool            `json:"invoice_available"`
	Items            []OrderItem     `json:"items"`
}

type orders []Order

func (o *orders) validate() error {
	for i, order := range *o {
		if order.ID <= 0 {
			return fmt.Errorf("order %d has no id", i)
		}
		if order.Status == "" {
			return fmt.Errorf("order %d has no status", order.ID)
		}
	}
	return nil
}

// Variant is a purchasable size/color combination of a product
type Variant struct {
	ID    int64           `json:"id"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Product as served by the public catalog
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Variants    []Variant `json:"variants"`
}

type products []Product

func (p *products) validate() error {
	for i := range *p {
		if err := (*p)[i].validate(); err != nil {
			return fmt.Errorf("product %d: %w", i, err)
		}
	}
	return nil
}

// Profile is the authenticated user's account record
type Profile struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

func (p *Profile) validate() error {
	if p.Email == "" {
		return errors.New("email missing")
	}
	return nil
}

// StatusUpdate acknowledges an admin order status change
type StatusUpdate struct {
	OrderID   int64  `json:"order_id"`
	NewStatus string `json:"new_status"`
}

func (s *StatusUpdate) validate() error {
	if s.OrderID <= 0 || s.NewStatus == "" {
		return errors.New("order_id or new_status missing")
	}
	return nil
}

func (p *Product) validate() error {
	if p.ID <= 0 {
		return errors.New("product id missing")
	}
	for _, v := range p.Variants {
		if v.ID <= 0 {
			return fmt.Errorf("product %d has a variant without id", p.ID)
		}
	}
	return nil
}

// Review is one customer's rating of a product
type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) validate() error {
	if r.ID <= 0 {
		return errors.New("review id missing")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("review %d has rating %d", r.ID, r.Rating)
	}
	return nil
}

type reviews []Review

func (r *reviews) validate() error {
	for i := range *r {
		if err := (*r)[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// ReviewInput is the body of a review submission
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ProfileUpdate is a partial profile change; nil fields are left as they are
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// VariantInput describes a variant in an admin product write.
// A zero ID creates the variant; a known ID updates it in place.
type VariantInput struct {
	ID    int64           `json:"id,omitempty"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// ProductInput is the body of an admin product create or update.
// On update, empty fields are left as they are and a nil Variants keeps the variants;
// a non-nil Variants replaces the whole set.
type ProductInput struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Variants    []VariantInput `json:"variants,omitempty"`
}

// AdminUser is an account as the back office sees it
type AdminUser struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
}

func (u *AdminUser) validate() error {
	if u.ID <= 0 || u.Email == "" {
		return errors.New("user id or email missing")
	}
	return nil
}

type adminUsers []AdminUser

func (u *adminUsers) validate() error {
	for i := range *u {
		if err := (*u)[i].validate(); err != nil {
			return fmt.Errorf("user %d: %w", i, err)
		}
	}
	return nil
}

// AdminUserUpdate is a partial account change; nil fields are left as they are
type AdminUserUpdate struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsStaff  *bool   `json:"is_staff,omitempty"`
}
