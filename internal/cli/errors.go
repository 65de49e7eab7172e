package cli

import (
	"errors"

	"github.com/example/storefront-client/internal/command"
	"github.com/example/storefront-client/internal/domain/checkout"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/reconcile"
)

// reportError writes err through the formatter and returns the matching exit error.
// Malformed input exits with ExitCommandError, everything the shop refused with ExitFailure.
func reportError(out *OutputFormatter, err error) error {
	code, exit := ErrCodeFlow, ExitFailure
	if errors.Is(err, command.ErrInvalidCommand) ||
		errors.Is(err, checkout.ErrPaymentMethodRequired) {
		code, exit = ErrCodeCommand, ExitCommandError
	}

	var details any
	if d := errorDetails(err); d != nil {
		details = d
	}
	_ = out.Error(code, err.Error(), details)
	return WrapExitError(exit, code, err)
}

func errorDetails(err error) map[string]any {
	var (
		apiErr   *commerce.APIError
		partial  *reconcile.PartialMergeError
		declined *checkout.DeclinedError
	)
	switch {
	case errors.As(err, &partial):
		return map[string]any{"merged": partial.Merged, "remaining": partial.Remaining}
	case errors.As(err, &declined):
		return map[string]any{"decline_code": declined.Code}
	case errors.As(err, &apiErr):
		return map[string]any{"status": apiErr.StatusCode}
	}
	return nil
}

// usageError reports bad arguments that cobra's own validation cannot catch
func usageError(out *OutputFormatter, message string) error {
	_ = out.Error(ErrCodeCommand, message, nil)
	return NewExitError(ExitCommandError, message)
}
