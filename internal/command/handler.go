package command

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/storefront-client/internal/cartview"
	"github.com/example/storefront-client/internal/domain/cart"
	"github.com/example/storefront-client/internal/domain/checkout"
	"github.com/example/storefront-client/internal/domain/session"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/query"
	"github.com/example/storefront-client/internal/reconcile"
	"github.com/shopspring/decimal"
)

var (
	ErrLoginRequired  = errors.New("login required")
	ErrMergePending   = errors.New("guest cart lines are still waiting to be merged")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrForbidden      = errors.New("admin privileges required")
	ErrInvalidCommand = errors.New("invalid command")
)

// Commerce is the part of the remote API the command side calls directly
type Commerce interface {
	Login(ctx context.Context, email, password string) (*commerce.AuthResult, error)
	Register(ctx context.Context, email, password string) (*commerce.AuthResult, error)
	ListCart(ctx context.Context) ([]commerce.CartLine, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*commerce.StatusUpdate, error)
	UpdateProfile(ctx context.Context, update commerce.ProfileUpdate) (*commerce.Profile, error)
	ChangePassword(ctx context.Context, current, next string) error
	SubmitReview(ctx context.Context, productID int64, review commerce.ReviewInput) (*commerce.Review, error)
	AdminListProducts(ctx context.Context) ([]commerce.Product, error)
	AdminCreateProduct(ctx context.Context, in commerce.ProductInput) (*commerce.Product, error)
	AdminUpdateProduct(ctx context.Context, productID int64, in commerce.ProductInput) (*commerce.Product, error)
	AdminDeleteProduct(ctx context.Context, productID int64) error
	AdminListUsers(ctx context.Context) ([]commerce.AdminUser, error)
	AdminUpdateUser(ctx context.Context, userID int64, update commerce.AdminUserUpdate) (*commerce.AdminUser, error)
}

type Handler struct {
	commerce   Commerce
	sessions   *session.Holder
	guest      *cart.Store
	reconciler *reconcile.Reconciler
	cartView   *cartview.Controller
	catalog    *query.Handler
	checkout   *checkout.Orchestrator
}

func NewHandler(
	remote Commerce,
	sessions *session.Holder,
	guest *cart.Store,
	reconciler *reconcile.Reconciler,
	cartView *cartview.Controller,
	catalog *query.Handler,
	orchestrator *checkout.Orchestrator,
) *Handler {
	return &Handler{
		commerce:   remote,
		sessions:   sessions,
		guest:      guest,
		reconciler: reconciler,
		cartView:   cartView,
		catalog:    catalog,
		checkout:   orchestrator,
	}
}

// Login authenticates, starts the session and merges the guest cart.
// If the merge stops early the session is kept and the *reconcile.PartialMergeError is returned with it.
func (h *Handler) Login(ctx context.Context, cmd Login) (*session.Session, error) {
	if cmd.Email == "" || cmd.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidCommand)
	}

	res, err := h.commerce.Login(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}
	return h.startSession(ctx, res, cmd.Email)
}

// Register creates an account and signs it in, merging the guest cart like Login
func (h *Handler) Register(ctx context.Context, cmd Register) (*session.Session, error) {
	if cmd.Email == "" || cmd.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidCommand)
	}

	res, err := h.commerce.Register(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}
	return h.startSession(ctx, res, cmd.Email)
}

func (h *Handler) startSession(ctx context.Context, res *commerce.AuthResult, email string) (*session.Session, error) {
	s := session.Session{
		Token:       res.Access,
		Email:       res.Email,
		Role:        res.Role,
		IsStaff:     res.IsStaff,
		IsSuperuser: res.IsSuperuser,
	}
	// registration responses carry only the token
	if s.Email == "" {
		s.Email = email
	}
	if s.Role == "" {
		s.Role = "CUSTOMER"
	}

	if err := h.sessions.Start(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	log.Printf("[Session] Signed in as %s", s.Email)

	if _, err := h.reconciler.Merge(ctx, s.Identity()); err != nil {
		return &s, err
	}
	return &s, nil
}

// Logout ends the session; the guest cart is kept
func (h *Handler) Logout(ctx context.Context) error {
	if err := h.sessions.End(ctx); err != nil {
		return err
	}
	log.Printf("[Session] Signed out")
	return nil
}

// AddToCart resolves the variant in the catalog and adds it in the current mode
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*cartview.View, error) {
	product, variant, err := h.catalog.FindVariant(ctx, cmd.VariantID)
	if err != nil {
		return nil, err
	}

	return h.cartView.AddLine(ctx, cart.Line{
		VariantID:   variant.ID,
		ProductName: product.Name,
		Size:        variant.Size,
		Color:       variant.Color,
		UnitPrice:   variant.Price,
		Quantity:    cmd.Quantity,
	})
}

func (h *Handler) UpdateCartLine(ctx context.Context, cmd UpdateCartLine) (*cartview.View, error) {
	return h.cartView.UpdateQuantity(ctx, cmd.Ref, cmd.Quantity)
}

func (h *Handler) RemoveCartLine(ctx context.Context, cmd RemoveCartLine) (*cartview.View, error) {
	return h.cartView.RemoveLine(ctx, cmd.Ref)
}

// Checkout pays for the remote cart.
// Guest lines left behind by an interrupted merge are sent first; checkout does not start until they are.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) (*checkout.Outcome, error) {
	s, err := h.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := h.guest.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		if _, err := h.reconciler.Merge(ctx, s.Identity()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMergePending, err)
		}
	}

	lines, err := h.commerce.ListCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	amount := decimal.Zero
	for _, line := range lines {
		amount = amount.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return h.checkout.Checkout(ctx, checkout.Request{
		Amount:        amount.Round(2),
		PaymentMethod: cmd.PaymentMethod,
	})
}
