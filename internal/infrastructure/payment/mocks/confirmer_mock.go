package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront-client/internal/infrastructure/payment"
)

// MockConfirmer is a mock payment processor
type MockConfirmer struct {
	mu sync.Mutex

	Result *payment.Result
	Err    error

	// For tracking calls in tests
	Calls []ConfirmCall
	// CtxErrs records ctx.Err() as seen by each call once it returns
	CtxErrs []error

	// Gate, when set, blocks ConfirmPayment until closed
	Gate chan struct{}
	// Started is signalled when a call begins
	Started chan struct{}
}

type ConfirmCall struct {
	ClientSecret  string
	PaymentMethod string
}

// NewMockConfirmer returns a confirmer that succeeds every payment
func NewMockConfirmer() *MockConfirmer {
	return &MockConfirmer{
		Result: &payment.Result{Intent: &payment.Intent{ID: "pi_1", Status: payment.StatusSucceeded}},
	}
}

// Decline makes every confirmation report a card error
func (m *MockConfirmer) Decline(code, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Result = &payment.Result{Error: &payment.Error{Code: code, Message: message, Type: "card_error"}}
}

func (m *MockConfirmer) ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (*payment.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, ConfirmCall{ClientSecret: clientSecret, PaymentMethod: paymentMethod})
	gate, started := m.Gate, m.Started
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.CtxErrs = append(m.CtxErrs, ctx.Err())
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

func (m *MockConfirmer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
