package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrTransport marks failures where no response was received
	ErrTransport = errors.New("commerce API unreachable")
	// ErrSchemaMismatch marks a 2xx response whose body lacks required fields
	ErrSchemaMismatch = errors.New("unexpected response from commerce API")
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the commerce API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// TokenSource supplies the bearer token for authenticated calls.
// An empty token sends the request anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront REST API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the API rooted at baseURL (for example http://localhost:8000/api/).
// tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API URL must be absolute: %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		tokens: tokens,
	}, nil
}

type validator interface {
	validate() error
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to load session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrSchemaMismatch, method, path, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrSchemaMismatch, method, path, err)
		}
	}
	return nil
}

// errorMessage extracts the human-readable message the API put in an error body.
// Recognised shapes: {"error": "..."}, {"error": {"message": "..."}}, {"detail": "..."}
// and field errors such as {"email": ["..."]}.
func errorMessage(status int, raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		switch v := body["error"].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if detail, ok := body["detail"].(string); ok && detail != "" {
			return detail
		}
		if msgs, ok := body["non_field_errors"].([]any); ok && len(msgs) > 0 {
			if msg, ok := msgs[0].(string); ok {
				return msg
			}
		}
		for _, field := range slices.Sorted(maps.Keys(body)) {
			if msgs, ok := body[field].([]any); ok && len(msgs) > 0 {
				if msg, ok := msgs[0].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "not allowed"
	case http.StatusNotFound:
		return "not found"
	}
	return fmt.Sprintf("request failed with status %d", status)
}
