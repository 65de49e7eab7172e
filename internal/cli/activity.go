package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront-client/internal/activity"
	"github.com/example/storefront-client/internal/infrastructure/kafka"
	"github.com/spf13/cobra"
)

// ActivityOptions holds flags for the activity tail command.
type ActivityOptions struct {
	*RootOptions
	Group string
}

// NewActivityCommand creates the activity command group.
func NewActivityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ActivityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Follow cart merge and checkout events",
	}

	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print activity events from Kafka until interrupted",
		Long: `Print the merge and checkout events published by storefront clients.
Requires kafka.brokers in the config file or KAFKA_BROKERS.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivityTail(opts, cmd)
		},
	}
	tail.Flags().StringVar(&opts.Group, "group", "", "Consumer group id (default: no group, newest events only)")
	cmd.AddCommand(tail)

	return cmd
}

func runActivityTail(opts *ActivityOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		_ = out.Error(ErrCodeCommand, err.Error(), nil)
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return usageError(out, "no kafka brokers configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, opts.Group)
	defer consumer.Close()
	out.VerboseLog("tailing %s on %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)

	err = consumer.Consume(ctx, func(ctx context.Context, event activity.Event) error {
		if out.Format == "json" {
			return json.NewEncoder(out.Writer).Encode(event)
		}
		fmt.Fprintf(out.Writer, "%s %s [%s] %s\n", event.Timestamp.Format(time.RFC3339), event.Type, event.Source, event.Data)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return reportError(out, err)
	}
	return nil
}
