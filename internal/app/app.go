package app

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront-client/internal/activity"
	"github.com/example/storefront-client/internal/cartview"
	"github.com/example/storefront-client/internal/command"
	"github.com/example/storefront-client/internal/config"
	"github.com/example/storefront-client/internal/domain/cart"
	"github.com/example/storefront-client/internal/domain/checkout"
	"github.com/example/storefront-client/internal/domain/session"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/infrastructure/kafka"
	"github.com/example/storefront-client/internal/infrastructure/payment"
	"github.com/example/storefront-client/internal/infrastructure/store"
	"github.com/example/storefront-client/internal/query"
	"github.com/example/storefront-client/internal/reconcile"
)

// App is a fully wired storefront client
type App struct {
	KV       store.KV
	Sessions *session.Holder
	Guest    *cart.Store
	Commerce *commerce.Client
	Commands *command.Handler
	Queries  *query.Handler
	Cart     *cartview.Controller
	Checkout *checkout.Orchestrator

	closers []func() error
}

// New wires the client over an already opened store.
// A nil publisher logs activity events instead of publishing them.
func New(kv store.KV, cfg *config.Config, publisher activity.Publisher) (*App, error) {
	sessions := session.NewHolder(kv)
	guest := cart.NewStore(kv)

	client, err := commerce.NewClient(cfg.APIURL, sessions, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	confirmer := payment.NewStripeConfirmer(cfg.PaymentURL, cfg.PublishableKey, cfg.Timeout)
	recorder := activity.NewRecorder(publisher, "storefront")

	policy := cartview.Policy(cfg.CartPolicy)
	if policy != cartview.ResyncOnError && policy != cartview.FailFast {
		return nil, fmt.Errorf("unknown cart policy %q", cfg.CartPolicy)
	}

	controller := cartview.NewController(guest, client, sessions, policy)
	queries := query.NewHandler(client)
	orchestrator := checkout.NewOrchestrator(client, confirmer, recorder)
	commands := command.NewHandler(
		client,
		sessions,
		guest,
		reconcile.NewReconciler(guest, client, recorder),
		controller,
		queries,
		orchestrator,
	)

	return &App{
		KV:       kv,
		Sessions: sessions,
		Guest:    guest,
		Commerce: client,
		Commands: commands,
		Queries:  queries,
		Cart:     controller,
		Checkout: orchestrator,
	}, nil
}

// Open opens the configured store and activity sink, then wires the client
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	kv, err := store.Open(ctx, store.Options{
		Backend:     cfg.Store.Backend,
		Path:        cfg.Store.Path,
		DatabaseURL: cfg.Store.DatabaseURL,
		RedisAddr:   cfg.Store.RedisAddr,
		DynamoTable: cfg.Store.DynamoTable,
		Namespace:   cfg.Store.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	var publisher activity.Publisher
	var closers []func() error
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = producer
		closers = append(closers, producer.Close)
	}

	a, err := New(kv, cfg, publisher)
	if err != nil {
		kv.Close()
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	a.closers = append(closers, kv.Close)
	return a, nil
}

// Close releases the store and the activity producer
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil {
			if first == nil {
				first = err
			}
			log.Printf("[App] Close error: %v", err)
		}
	}
	return first
}
