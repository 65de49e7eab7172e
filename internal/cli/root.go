// Package cli implements the storefront command-line interface.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/example/storefront-client/internal/app"
	"github.com/example/storefront-client/internal/config"
	"github.com/spf13/cobra"
)

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string

	deps Deps
}

// Deps are the constructors a command uses to reach the storefront.
// Tests replace them to point the CLI at an in-process server.
type Deps struct {
	LoadConfig func(path string) (*config.Config, error)
	Open       func(ctx context.Context, cfg *config.Config) (*app.App, error)
}

func defaultDeps() Deps {
	return Deps{LoadConfig: config.Load, Open: app.Open}
}

// NewRootCommand creates the root storefront command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultDeps())
}

func newRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Shop the storefront from the terminal",
		Long: `storefront browses the catalog, keeps a guest cart on this machine,
signs in to the shop, and pays for the cart.

A guest cart is merged into the account cart once, on login or registration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", msg)
				return NewExitError(ExitCommandError, msg)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "Output format: text|json")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to a YAML config file (default $STOREFRONT_CONFIG)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewReviewsCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))
	cmd.AddCommand(NewActivityCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := o.deps.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// withApp opens the client for the duration of fn
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, out *OutputFormatter) error) error {
	out := o.formatter(cmd)
	cfg, err := o.loadConfig()
	if err != nil {
		_ = out.Error(ErrCodeCommand, err.Error(), nil)
		return err
	}
	out.VerboseLog("api %s, store %s", cfg.APIURL, cfg.Store.Backend)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := o.deps.Open(ctx, cfg)
	if err != nil {
		exitErr := WrapExitError(ExitCommandError, "failed to open storefront state", err)
		_ = out.Error(ErrCodeCommand, exitErr.Error(), nil)
		return exitErr
	}
	defer a.Close()

	return fn(ctx, a, out)
}
