package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/storefront-client/internal/app"
	"github.com/example/storefront-client/internal/command"
	"github.com/example/storefront-client/internal/domain/checkout"
	"github.com/example/storefront-client/internal/query"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ProductsOptions holds the catalog filter flags.
type ProductsOptions struct {
	*RootOptions
	Category string
	Search   string
	MaxPrice string
	InStock  bool
}

func (o *ProductsOptions) filter() (query.ProductFilter, error) {
	f := query.ProductFilter{Search: o.Search, InStockOnly: o.InStock}
	if o.Category != "" {
		category, err := query.ParseCategory(o.Category)
		if err != nil {
			return f, err
		}
		f.Category = category
	}
	if o.MaxPrice != "" {
		price, err := decimal.NewFromString(o.MaxPrice)
		if err != nil || price.IsNegative() {
			return f, fmt.Errorf("invalid max price %q", o.MaxPrice)
		}
		f.MaxPrice = &price
	}
	return f, nil
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "products",
		Short:         "List the catalog with variant ids, prices and stock",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				filter, err := opts.filter()
				if err != nil {
					return usageError(out, err.Error())
				}
				products, err := a.Queries.SearchProducts(ctx, filter)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(products, renderProducts(products))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "Only this category, e.g. gadgets or beauty-products")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Only products whose name contains this text")
	cmd.Flags().StringVar(&opts.MaxPrice, "max-price", "", "Only products with a variant at or below this price")
	cmd.Flags().BoolVar(&opts.InStock, "in-stock", false, "Only products with a variant in stock")
	return cmd
}

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
		Long: `Show and edit the cart. Signed out, the cart lives on this machine and
lines are addressed by position. Signed in, lines are addressed by their server id.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartList(rootOpts, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "Show the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartList(rootOpts, cmd)
		},
	})

	var quantity int
	add := &cobra.Command{
		Use:           "add <variant-id>",
		Short:         "Add a product variant to the cart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid variant id %q", args[0]))
				}
				view, err := a.Commands.AddToCart(ctx, command.AddToCart{VariantID: id, Quantity: quantity})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(view, renderCart(view))
			})
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "Quantity to add")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:           "update <ref> <quantity>",
		Short:         "Set the quantity of a cart line; quantities below one are ignored",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				ref, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid line ref %q", args[0]))
				}
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid quantity %q", args[1]))
				}
				view, err := a.Commands.UpdateCartLine(ctx, command.UpdateCartLine{Ref: ref, Quantity: qty})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(view, renderCart(view))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "remove <ref>",
		Short:         "Remove a cart line",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				ref, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid line ref %q", args[0]))
				}
				view, err := a.Commands.RemoveCartLine(ctx, command.RemoveCartLine{Ref: ref})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(view, renderCart(view))
			})
		},
	})

	return cmd
}

func runCartList(rootOpts *RootOptions, cmd *cobra.Command) error {
	return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
		view, err := a.Cart.ListLines(ctx)
		if err != nil {
			return reportError(out, err)
		}
		return out.Success(view, renderCart(view))
	})
}

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	PaymentMethod string
}

type checkoutResult struct {
	Status           checkout.Status `json:"status"`
	OrderID          int64           `json:"order_id,omitempty"`
	Message          string          `json:"message,omitempty"`
	ConfirmationPath string          `json:"confirmation_path,omitempty"`
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the account cart",
		Long: `Create a payment intent for the cart total and confirm it with the given
payment method. A failed payment is reported once and never retried; run
checkout again to make a new attempt.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				outcome, err := a.Commands.Checkout(ctx, command.Checkout{PaymentMethod: opts.PaymentMethod})
				if err != nil {
					if outcome != nil && outcome.Message != "" {
						err = fmt.Errorf("payment failed: %s: %w", outcome.Message, err)
					}
					return reportError(out, err)
				}
				result := checkoutResult{
					Status:           outcome.Status,
					OrderID:          outcome.OrderID,
					Message:          outcome.Message,
					ConfirmationPath: outcome.ConfirmationPath,
				}
				return out.Success(result, renderOutcome(outcome))
			})
		},
	}

	cmd.Flags().StringVar(&opts.PaymentMethod, "payment-method", "pm_card_visa", "Payment method id to confirm with")
	return cmd
}

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
			orders, err := a.Queries.ListOrders(ctx)
			if err != nil {
				return reportError(out, err)
			}
			return out.Success(orders, renderOrders(orders))
		})
	}

	cmd := &cobra.Command{
		Use:           "orders",
		Short:         "Show order history, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          list,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "Show order history, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          list,
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "show <order-id>",
		Short:         "Show one order with its items",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid order id %q", args[0]))
				}
				o, err := a.Queries.GetOrder(ctx, id)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(o, renderOrder(o))
			})
		},
	})

	return cmd
}

var errNotPositive = errors.New("must be positive")

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errNotPositive
	}
	return id, nil
}
