package command

import "github.com/shopspring/decimal"

// Session Commands
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Register struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Cart Commands
type AddToCart struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartLine struct {
	// Ref is the line index in guest mode and the remote line id when signed in
	Ref      int64 `json:"ref"`
	Quantity int   `json:"quantity"`
}

type RemoveCartLine struct {
	Ref int64 `json:"ref"`
}

// Checkout Commands
type Checkout struct {
	PaymentMethod string `json:"payment_method"`
}

// Account Commands

// UpdateProfile changes the set fields of the signed-in account
type UpdateProfile struct {
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type ChangePassword struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Review Commands
type SubmitReview struct {
	ProductID int64  `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Admin Commands
type ProductVariant struct {
	// ID is zero for a new variant
	ID    int64           `json:"id,omitempty"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type CreateProduct struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Variants    []ProductVariant `json:"variants"`
}

// UpdateProduct leaves empty fields alone. A nil Variants keeps the variants;
// otherwise the listed set replaces them.
type UpdateProduct struct {
	ProductID   int64            `json:"product_id"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

type DeleteProduct struct {
	ProductID int64 `json:"product_id"`
}

type UpdateUser struct {
	UserID   int64   `json:"user_id"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsStaff  *bool   `json:"is_staff,omitempty"`
}

type UpdateOrderStatus struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}
