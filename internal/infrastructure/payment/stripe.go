package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrInvalidClientSecret  = errors.New("invalid payment client secret")
	ErrProcessorUnavailable = errors.New("payment processor unreachable")
)

const (
	StatusSucceeded             = "succeeded"
	StatusProcessing            = "processing"
	StatusRequiresAction        = "requires_action"
	StatusRequiresPaymentMethod = "requires_payment_method"
)

// Error is a processor-reported failure such as a declined card
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

// Intent is the processor's view of a payment intent after confirmation
type Intent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Result of a confirmation attempt. Exactly one of Error and Intent is set.
type Result struct {
	Error  *Error
	Intent *Intent
}

// StripeConfirmer confirms payment intents with the publishable key,
// the same request the browser SDK issues.
type StripeConfirmer struct {
	baseURL        string
	publishableKey string
	httpClient     *http.Client
}

func NewStripeConfirmer(baseURL, publishableKey string, timeout time.Duration) *StripeConfirmer {
	return &StripeConfirmer{
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishableKey: publishableKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// IntentID derives the intent id from a client secret of the form pi_123_secret_abc
func IntentID(clientSecret string) (string, error) {
	id, _, ok := strings.Cut(clientSecret, "_secret_")
	if !ok || id == "" {
		return "", ErrInvalidClientSecret
	}
	return id, nil
}

// ConfirmPayment confirms the intent behind clientSecret with paymentMethod.
// Declines are reported in Result.Error; only transport and protocol failures are errors.
func (s *StripeConfirmer) ConfirmPayment(ctx context.Context, clientSecret, paymentMethod string) (*Result, error) {
	intentID, err := IntentID(clientSecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_secret", clientSecret)
	form.Set("payment_method", paymentMethod)

	endpoint := fmt.Sprintf("%s/v1/payment_intents/%s/confirm", s.baseURL, url.PathEscape(intentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build confirm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.publishableKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessorUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessorUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var intent Intent
		if err := json.Unmarshal(raw, &intent); err != nil || intent.Status == "" {
			return nil, fmt.Errorf("unexpected confirm response (status %d)", resp.StatusCode)
		}
		return &Result{Intent: &intent}, nil
	}

	var body struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == nil || body.Error.Message == "" {
		return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}
	return &Result{Error: body.Error}, nil
}
