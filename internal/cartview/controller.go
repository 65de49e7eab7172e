package cartview

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/storefront-client/internal/domain/cart"
	"github.com/example/storefront-client/internal/domain/session"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

// Policy decides what the controller shows after a failed remote mutation
type Policy string

const (
	// ResyncOnError drops local assumptions and re-fetches the remote cart
	ResyncOnError Policy = "resync_on_error"
	// FailFast returns the error without a view
	FailFast Policy = "fail_fast"
)

type GuestStore interface {
	Read(ctx context.Context) (cart.GuestCart, error)
	Write(ctx context.Context, lines cart.GuestCart) error
	AddLine(ctx context.Context, line cart.Line) (cart.GuestCart, error)
}

type RemoteCart interface {
	ListCart(ctx context.Context) ([]commerce.CartLine, error)
	AddCartLine(ctx context.Context, variantID int64, quantity int) error
	UpdateCartLine(ctx context.Context, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, lineID int64) error
}

type SessionSource interface {
	Current(ctx context.Context) (*session.Session, error)
}

// Line is a displayed cart row. Ref is the position in the guest cart,
// or the remote line id when authenticated.
type Line struct {
	Ref         int64           `json:"ref"`
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type View struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Guest bool            `json:"guest"`
}

// Controller presents one cart surface over the guest cart and the remote cart,
// choosing by whether a session is active.
type Controller struct {
	guest    GuestStore
	remote   RemoteCart
	sessions SessionSource
	policy   Policy
}

func NewController(guest GuestStore, remote RemoteCart, sessions SessionSource, policy Policy) *Controller {
	if policy == "" {
		policy = ResyncOnError
	}
	return &Controller{guest: guest, remote: remote, sessions: sessions, policy: policy}
}

func (c *Controller) ListLines(ctx context.Context) (*View, error) {
	authenticated, err := c.authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		return c.guestView(ctx)
	}
	return c.remoteView(ctx)
}

// UpdateQuantity sets the quantity of the referenced line. A quantity below 1 changes nothing.
func (c *Controller) UpdateQuantity(ctx context.Context, ref int64, quantity int) (*View, error) {
	if quantity < 1 {
		return c.ListLines(ctx)
	}

	authenticated, err := c.authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		lines, err := c.guest.Read(ctx)
		if err != nil {
			return nil, err
		}
		updated, err := lines.WithQuantity(int(ref), quantity)
		if errors.Is(err, cart.ErrLineNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrLineNotFound, ref)
		}
		if err != nil {
			return nil, err
		}
		if err := c.guest.Write(ctx, updated); err != nil {
			return nil, err
		}
		return buildGuestView(updated), nil
	}

	if err := c.remote.UpdateCartLine(ctx, ref, quantity); err != nil {
		return c.afterRemoteError(ctx, "update", err)
	}
	return c.remoteView(ctx)
}

func (c *Controller) RemoveLine(ctx context.Context, ref int64) (*View, error) {
	authenticated, err := c.authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		lines, err := c.guest.Read(ctx)
		if err != nil {
			return nil, err
		}
		updated, err := lines.Without(int(ref))
		if errors.Is(err, cart.ErrLineNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrLineNotFound, ref)
		}
		if err != nil {
			return nil, err
		}
		if err := c.guest.Write(ctx, updated); err != nil {
			return nil, err
		}
		return buildGuestView(updated), nil
	}

	if err := c.remote.DeleteCartLine(ctx, ref); err != nil {
		return c.afterRemoteError(ctx, "remove", err)
	}
	return c.remoteView(ctx)
}

// AddLine adds a line to whichever cart is active
func (c *Controller) AddLine(ctx context.Context, line cart.Line) (*View, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	authenticated, err := c.authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		lines, err := c.guest.AddLine(ctx, line)
		if err != nil {
			return nil, err
		}
		return buildGuestView(lines), nil
	}

	if err := c.remote.AddCartLine(ctx, line.VariantID, line.Quantity); err != nil {
		return c.afterRemoteError(ctx, "add", err)
	}
	return c.remoteView(ctx)
}

func (c *Controller) authenticated(ctx context.Context) (bool, error) {
	s, err := c.sessions.Current(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	return s != nil, nil
}

func (c *Controller) afterRemoteError(ctx context.Context, op string, cause error) (*View, error) {
	log.Printf("[Cart] Remote %s failed: %v", op, cause)
	if c.policy != ResyncOnError {
		return nil, cause
	}

	view, err := c.remoteView(ctx)
	if err != nil {
		log.Printf("[Cart] Resync after failed %s also failed: %v", op, err)
		return nil, cause
	}
	return view, cause
}

func (c *Controller) guestView(ctx context.Context) (*View, error) {
	lines, err := c.guest.Read(ctx)
	if err != nil {
		return nil, err
	}
	return buildGuestView(lines), nil
}

func (c *Controller) remoteView(ctx context.Context) (*View, error) {
	remote, err := c.remote.ListCart(ctx)
	if err != nil {
		return nil, err
	}

	view := &View{Lines: make([]Line, 0, len(remote))}
	for _, l := range remote {
		view.Lines = append(view.Lines, newLine(l.ID, l.VariantID, l.ProductName, l.Size, l.Color, l.UnitPrice, l.Quantity))
	}
	view.Total = total(view.Lines)
	return view, nil
}

func buildGuestView(lines cart.GuestCart) *View {
	view := &View{Lines: make([]Line, 0, len(lines)), Guest: true}
	for i, l := range lines {
		view.Lines = append(view.Lines, newLine(int64(i), l.VariantID, l.ProductName, l.Size, l.Color, l.UnitPrice, l.Quantity))
	}
	view.Total = total(view.Lines)
	return view
}

func newLine(ref, variantID int64, product, size, color string, price decimal.Decimal, qty int) Line {
	return Line{
		Ref:         ref,
		VariantID:   variantID,
		ProductName: product,
		Size:        size,
		Color:       color,
		UnitPrice:   price,
		Quantity:    qty,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// total sums subtotals and rounds to two decimals
func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum.Round(2)
}
