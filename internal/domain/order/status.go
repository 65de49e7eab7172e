package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses in lifecycle order
var AllStatuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}

var (
	ErrUnknownStatus    = errors.New("unknown order status")
	ErrInvalidStatus    = errors.New("invalid order status transition")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrOrderNotPaid     = errors.New("order must be paid before shipping")
	ErrOrderShipped     = errors.New("cannot cancel shipped order")
	ErrOrderCancelled   = errors.New("order is already cancelled")
)

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {}, // terminal state
	StatusCancelled: {}, // terminal state
}

// ParseStatus accepts a status name in any case
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validTransitions[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return candidate, nil
}

// CanTransitionTo checks if an order in status s can move to target
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionError returns an appropriate error for an invalid transition
func (s Status) TransitionError(target Status) error {
	switch {
	case s == StatusCancelled:
		return ErrOrderCancelled
	case (s == StatusShipped || s == StatusDelivered) && target == StatusCancelled:
		return ErrOrderShipped
	case s != StatusPending && target == StatusPaid:
		return ErrOrderAlreadyPaid
	case s == StatusPending && (target == StatusShipped || target == StatusDelivered):
		return ErrOrderNotPaid
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, s, target)
	}
}

// InvoiceAvailable reports whether an invoice can be issued for an order in this status
func (s Status) InvoiceAvailable() bool {
	return s == StatusPaid || s == StatusShipped || s == StatusDelivered
}

// InvoiceNumber formats the invoice number the storefront prints for an order
func InvoiceNumber(orderID int64, createdAt time.Time) string {
	return fmt.Sprintf("INV-%s-%05d", createdAt.Format("20060102"), orderID)
}
