package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/storefront-client/internal/app"
	"github.com/example/storefront-client/internal/command"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/query"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewAdminCommand creates the admin command group.
func NewAdminCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Staff operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "order-status <order-id> <status>",
		Short:         "Set an order's status (PENDING, PAID, SHIPPED, DELIVERED, CANCELLED)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid order id %q", args[0]))
				}
				update, err := a.Commands.UpdateOrderStatus(ctx, command.UpdateOrderStatus{OrderID: id, Status: args[1]})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(update, func(w io.Writer) {
					fmt.Fprintf(w, "Order #%d is now %s\n", update.OrderID, update.NewStatus)
				})
			})
		},
	})

	cmd.AddCommand(newAdminProductsCommand(rootOpts))
	cmd.AddCommand(newAdminUsersCommand(rootOpts))

	return cmd
}

// ProductFlags holds the product fields shared by admin create and update.
type ProductFlags struct {
	Name        string
	Description string
	Category    string
	Variants    []string
}

func addProductFlags(cmd *cobra.Command, f *ProductFlags) {
	cmd.Flags().StringVar(&f.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.Description, "description", "", "Product description")
	cmd.Flags().StringVar(&f.Category, "category", "", "Category, e.g. gadgets or beauty-products")
	cmd.Flags().StringArrayVar(&f.Variants, "variant", nil, "Variant as [ID=]SIZE/COLOR:PRICE:STOCK, repeatable; on update the list replaces all variants")
}

func (f *ProductFlags) variants() ([]command.ProductVariant, error) {
	if len(f.Variants) == 0 {
		return nil, nil
	}
	out := make([]command.ProductVariant, 0, len(f.Variants))
	for _, spec := range f.Variants {
		v, err := parseVariantSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseVariantSpec reads [ID=]SIZE/COLOR:PRICE:STOCK, e.g. "M/black:19.99:5" or "8=L/:21:0"
func parseVariantSpec(spec string) (command.ProductVariant, error) {
	var v command.ProductVariant
	invalid := fmt.Errorf("invalid variant %q, want [ID=]SIZE/COLOR:PRICE:STOCK", spec)

	rest := spec
	if id, tail, ok := strings.Cut(spec, "="); ok {
		n, err := parseID(id)
		if err != nil {
			return v, invalid
		}
		v.ID, rest = n, tail
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return v, invalid
	}
	v.Size, v.Color, _ = strings.Cut(parts[0], "/")

	price, err := decimal.NewFromString(parts[1])
	if err != nil {
		return v, invalid
	}
	stock, err := strconv.Atoi(parts[2])
	if err != nil {
		return v, invalid
	}
	v.Price, v.Stock = price, stock
	return v, nil
}

func newAdminProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List every product with its id, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				products, err := a.Commands.AdminProducts(ctx)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(products, renderAdminProducts(products))
			})
		},
	})

	var createFlags ProductFlags
	create := &cobra.Command{
		Use:           "create",
		Short:         "Add a product",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				variants, err := createFlags.variants()
				if err != nil {
					return usageError(out, err.Error())
				}
				product, err := a.Commands.CreateProduct(ctx, command.CreateProduct{
					Name:        createFlags.Name,
					Description: createFlags.Description,
					Category:    createFlags.Category,
					Variants:    variants,
				})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(product, renderAdminProducts(query.ToProductReadModels([]commerce.Product{*product})))
			})
		},
	}
	addProductFlags(create, &createFlags)
	cmd.AddCommand(create)

	var updateFlags ProductFlags
	update := &cobra.Command{
		Use:           "update <product-id>",
		Short:         "Change a product; flags left out keep their value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid product id %q", args[0]))
				}
				variants, err := updateFlags.variants()
				if err != nil {
					return usageError(out, err.Error())
				}
				product, err := a.Commands.UpdateProduct(ctx, command.UpdateProduct{
					ProductID:   id,
					Name:        updateFlags.Name,
					Description: updateFlags.Description,
					Category:    updateFlags.Category,
					Variants:    variants,
				})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(product, renderAdminProducts(query.ToProductReadModels([]commerce.Product{*product})))
			})
		},
	}
	addProductFlags(update, &updateFlags)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:           "delete <product-id>",
		Short:         "Delete a product with its variants and reviews",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid product id %q", args[0]))
				}
				if err := a.Commands.DeleteProduct(ctx, command.DeleteProduct{ProductID: id}); err != nil {
					return reportError(out, err)
				}
				return out.Success(map[string]int64{"deleted": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Product #%d deleted\n", id)
				})
			})
		},
	})

	return cmd
}

func newAdminUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List accounts, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				users, err := a.Commands.AdminUsers(ctx)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(users, renderUsers(users))
			})
		},
	})

	var (
		role          string
		active, staff bool
	)
	update := &cobra.Command{
		Use:           "update <user-id>",
		Short:         "Change an account's role, active flag or staff flag",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd command.UpdateUser
			if cmd.Flags().Changed("role") {
				upd.Role = &role
			}
			if cmd.Flags().Changed("active") {
				upd.IsActive = &active
			}
			if cmd.Flags().Changed("staff") {
				upd.IsStaff = &staff
			}

			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid user id %q", args[0]))
				}
				upd.UserID = id
				user, err := a.Commands.UpdateUser(ctx, upd)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(user, renderUsers([]commerce.AdminUser{*user}))
			})
		},
	}
	update.Flags().StringVar(&role, "role", "", "ADMIN or CUSTOMER")
	update.Flags().BoolVar(&active, "active", true, "Whether the account may sign in (--active=false deactivates)")
	update.Flags().BoolVar(&staff, "staff", false, "Staff flag")
	cmd.AddCommand(update)

	return cmd
}
