package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/example/storefront-client/internal/app"
	"github.com/example/storefront-client/internal/command"
	"github.com/spf13/cobra"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	show := func(cmd *cobra.Command, args []string) error {
		return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
			profile, err := a.Queries.Profile(ctx)
			if err != nil {
				return reportError(out, err)
			}
			return out.Success(profile, renderProfile(profile))
		})
	}

	cmd := &cobra.Command{
		Use:           "profile",
		Short:         "Show and edit the signed-in account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          show,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show the account profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          show,
	})
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	cmd.AddCommand(newProfilePasswordCommand(rootOpts))

	return cmd
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var email, username, firstName, lastName string

	cmd := &cobra.Command{
		Use:           "update",
		Short:         "Change the email, username or name of the account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// only flags given on the command line are sent, so a field can be cleared with --first-name ""
			changed := func(name string, value *string) *string {
				if cmd.Flags().Changed(name) {
					return value
				}
				return nil
			}
			update := command.UpdateProfile{
				Email:     changed("email", &email),
				Username:  changed("username", &username),
				FirstName: changed("first-name", &firstName),
				LastName:  changed("last-name", &lastName),
			}

			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				profile, err := a.Commands.UpdateProfile(ctx, update)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(profile, renderProfile(profile))
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	return cmd
}

func newProfilePasswordCommand(rootOpts *RootOptions) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:           "password",
		Short:         "Change the account password",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if current == "" {
				current = os.Getenv("STOREFRONT_PASSWORD")
			}
			if next == "" {
				next = os.Getenv("STOREFRONT_NEW_PASSWORD")
			}

			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				err := a.Commands.ChangePassword(ctx, command.ChangePassword{CurrentPassword: current, NewPassword: next})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(map[string]string{"detail": "password updated"}, func(w io.Writer) {
					fmt.Fprintln(w, "Password updated")
				})
			})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password (default $STOREFRONT_PASSWORD)")
	cmd.Flags().StringVar(&next, "new", "", "New password, at least 8 characters (default $STOREFRONT_NEW_PASSWORD)")
	return cmd
}

// NewReviewsCommand creates the reviews command group.
func NewReviewsCommand(rootOpts *RootOptions) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
			id, err := parseID(args[0])
			if err != nil {
				return usageError(out, fmt.Sprintf("invalid product id %q", args[0]))
			}
			reviews, err := a.Queries.ProductReviews(ctx, id)
			if err != nil {
				return reportError(out, err)
			}
			return out.Success(reviews, renderReviews(reviews))
		})
	}

	cmd := &cobra.Command{
		Use:           "reviews",
		Short:         "Read and write product reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list <product-id>",
		Short:         "Show a product's reviews, newest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          list,
	})

	var (
		rating  int
		comment string
	)
	add := &cobra.Command{
		Use:           "add <product-id>",
		Short:         "Review a product you bought; a second review replaces the first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return usageError(out, fmt.Sprintf("invalid product id %q", args[0]))
				}
				review, err := a.Commands.SubmitReview(ctx, command.SubmitReview{ProductID: id, Rating: rating, Comment: comment})
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(review, func(w io.Writer) {
					fmt.Fprintf(w, "Rated product %d %d/5\n", id, review.Rating)
				})
			})
		},
	}
	add.Flags().IntVarP(&rating, "rating", "r", 0, "Rating from 1 to 5")
	add.Flags().StringVarP(&comment, "comment", "m", "", "Review text")
	cmd.AddCommand(add)

	return cmd
}
