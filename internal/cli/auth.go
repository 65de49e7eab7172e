package cli

import (
	"context"
	"os"

	"github.com/example/storefront-client/internal/app"
	"github.com/example/storefront-client/internal/command"
	"github.com/example/storefront-client/internal/domain/session"
	"github.com/spf13/cobra"
)

// CredentialOptions holds flags for login and register.
type CredentialOptions struct {
	*RootOptions
	Email    string
	Password string
}

func (o *CredentialOptions) password() string {
	if o.Password != "" {
		return o.Password
	}
	return os.Getenv("STOREFRONT_PASSWORD")
}

func addCredentialFlags(cmd *cobra.Command, opts *CredentialOptions) {
	cmd.Flags().StringVar(&opts.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Account password (default $STOREFRONT_PASSWORD)")
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CredentialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "login",
		Short:         "Sign in and merge the guest cart into the account cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				s, err := a.Commands.Login(ctx, command.Login{Email: opts.Email, Password: opts.password()})
				return finishSignIn(out, s, err)
			})
		},
	}
	addCredentialFlags(cmd, opts)
	return cmd
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CredentialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "register",
		Short:         "Create an account, sign in, and merge the guest cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				s, err := a.Commands.Register(ctx, command.Register{Email: opts.Email, Password: opts.password()})
				return finishSignIn(out, s, err)
			})
		},
	}
	addCredentialFlags(cmd, opts)
	return cmd
}

// finishSignIn keeps a started session even when the merge stopped early
func finishSignIn(out *OutputFormatter, s *session.Session, err error) error {
	if err != nil && s == nil {
		return reportError(out, err)
	}
	if err != nil {
		out.Warn("%v", err)
		out.Warn("the remaining guest cart lines are merged on the next checkout")
	}
	return out.Success(s, renderSession(s))
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "End the session; the guest cart stays on this machine",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Commands.Logout(ctx); err != nil {
					return reportError(out, err)
				}
				return out.Success(nil, renderSession(nil))
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "whoami",
		Short:         "Show the signed-in account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				s, err := a.Sessions.Current(ctx)
				if err != nil {
					return reportError(out, err)
				}
				return out.Success(s, renderSession(s))
			})
		},
	}
}
