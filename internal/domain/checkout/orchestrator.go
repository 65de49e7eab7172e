package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"

	"github.com/example/storefront-client/internal/activity"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/infrastructure/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrCheckoutInProgress    = errors.New("checkout already in progress")
	ErrIntentFailed          = errors.New("could not initialize payment")
	ErrConfirmationFailed    = errors.New("payment confirmation failed")
	ErrPaymentIncomplete     = errors.New("payment not completed")
	ErrCheckoutCancelled     = errors.New("checkout cancelled before confirmation")
	ErrInvalidAmount         = errors.New("checkout amount must be positive")
	ErrPaymentMethodRequired = errors.New("payment method is required")
)

// DeclinedError carries the processor's own decline message
type DeclinedError struct {
	Code    string
	Message string
}

func (e *DeclinedError) Error() string {
	return e.Message
}

// IntentCreator opens a server-side payment intent for the current cart
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*commerce.PaymentIntent, error)
}

// Confirmer submits a payment method against a payment intent
type Confirmer interface {
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (*payment.Result, error)
}

type EventRecorder interface {
	Record(ctx context.Context, eventType string, data any)
}

type Request struct {
	Amount decimal.Decimal
	// PaymentMethod is an opaque processor reference; it is never logged or stored
	PaymentMethod string
}

// Outcome of a finished checkout attempt
type Outcome struct {
	Status           Status
	OrderID          int64
	Message          string
	ConfirmationPath string
}

// ConfirmationPath is the in-app route of the order confirmation view
func ConfirmationPath(orderID int64) string {
	return "/payment-success?" + url.Values{"order_id": {strconv.FormatInt(orderID, 10)}}.Encode()
}

// Orchestrator drives one checkout session through intent creation and confirmation.
// A second submission while an attempt is in flight is rejected without any remote call.
// Failed attempts are never retried automatically.
type Orchestrator struct {
	intents   IntentCreator
	confirmer Confirmer
	events    EventRecorder

	mu     sync.Mutex
	status Status
}

func NewOrchestrator(intents IntentCreator, confirmer Confirmer, events EventRecorder) *Orchestrator {
	return &Orchestrator{
		intents:   intents,
		confirmer: confirmer,
		events:    events,
		status:    StatusIdle,
	}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Checkout runs one attempt to completion.
// On failure both the Outcome (status failed, with a message) and a typed error are returned.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*Outcome, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.PaymentMethod == "" {
		return nil, ErrPaymentMethodRequired
	}

	if err := o.begin(); err != nil {
		return nil, err
	}

	log.Printf("[Checkout] Requesting payment intent for %s", req.Amount.StringFixed(2))
	o.record(ctx, activity.EventCheckoutStarted, activity.CheckoutStarted{Amount: req.Amount.StringFixed(2)})

	intent, err := o.intents.CreatePaymentIntent(ctx, req.Amount)
	if err != nil {
		return o.fail(ctx, 0, "intent", ErrIntentFailed.Error(), fmt.Errorf("%w: %w", ErrIntentFailed, err))
	}
	if err := o.transition(StatusAwaitingConfirmation); err != nil {
		return nil, err
	}
	log.Printf("[Checkout] Payment intent created for order %d", intent.OrderID)

	if ctx.Err() != nil {
		return o.fail(ctx, intent.OrderID, "confirm", ErrCheckoutCancelled.Error(), fmt.Errorf("%w: %w", ErrCheckoutCancelled, ctx.Err()))
	}

	// once submitted, the caller going away must not abort the processor call
	result, err := o.confirmer.ConfirmPayment(context.WithoutCancel(ctx), intent.ClientSecret, req.PaymentMethod)
	switch {
	case err != nil:
		return o.fail(ctx, intent.OrderID, "confirm", ErrConfirmationFailed.Error(), fmt.Errorf("%w: %w", ErrConfirmationFailed, err))
	case result.Error != nil:
		return o.fail(ctx, intent.OrderID, "confirm", result.Error.Message, &DeclinedError{Code: result.Error.Code, Message: result.Error.Message})
	case result.Intent == nil || result.Intent.Status != payment.StatusSucceeded:
		status := "unknown"
		if result.Intent != nil {
			status = result.Intent.Status
		}
		msg := fmt.Sprintf("%s: status %s", ErrPaymentIncomplete.Error(), status)
		return o.fail(ctx, intent.OrderID, "confirm", msg, fmt.Errorf("%w: status %s", ErrPaymentIncomplete, status))
	}

	if err := o.transition(StatusSucceeded); err != nil {
		return nil, err
	}
	log.Printf("[Checkout] Payment succeeded for order %d", intent.OrderID)
	o.record(ctx, activity.EventCheckoutSucceeded, activity.CheckoutSucceeded{OrderID: intent.OrderID})

	return &Outcome{
		Status:           StatusSucceeded,
		OrderID:          intent.OrderID,
		ConfirmationPath: ConfirmationPath(intent.OrderID),
	}, nil
}

// begin moves a finished or fresh session into requesting_intent
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.Terminal() {
		o.status = StatusIdle
	}
	if !o.status.CanTransitionTo(StatusRequestingIntent) {
		return transitionError(o.status, StatusRequestingIntent)
	}
	o.status = StatusRequestingIntent
	return nil
}

func (o *Orchestrator) transition(target Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.status.CanTransitionTo(target) {
		return transitionError(o.status, target)
	}
	o.status = target
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, orderID int64, stage, message string, cause error) (*Outcome, error) {
	if err := o.transition(StatusFailed); err != nil {
		return nil, err
	}
	log.Printf("[Checkout] Checkout failed at %s stage (order %d): %s", stage, orderID, message)
	o.record(ctx, activity.EventCheckoutFailed, activity.CheckoutFailed{OrderID: orderID, Stage: stage, Reason: message})

	return &Outcome{Status: StatusFailed, OrderID: orderID, Message: message}, cause
}

func (o *Orchestrator) record(ctx context.Context, eventType string, data any) {
	if o.events == nil {
		return
	}
	o.events.Record(context.WithoutCancel(ctx), eventType, data)
}
