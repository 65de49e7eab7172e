package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/infrastructure/store"
)

var ErrMissingToken = errors.New("session token is required")

// Session is the authenticated identity the client acts for
type Session struct {
	Token       string `json:"-"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// IsAdmin reports whether the identity may use back-office operations
func (s *Session) IsAdmin() bool {
	return s.Role == "ADMIN" || s.IsStaff || s.IsSuperuser
}

// Identity is the key concurrent merges are deduplicated on
func (s *Session) Identity() string {
	if s.Email != "" {
		return s.Email
	}
	return s.Token
}

// Holder keeps the current session in the token and user slots.
// Absence of a token means guest mode.
type Holder struct {
	kv  store.KV
	now func() time.Time
	mu  sync.Mutex
}

func NewHolder(kv store.KV) *Holder {
	return &Holder{kv: kv, now: time.Now}
}

// Current returns the active session, or nil in guest mode.
// A token whose exp claim has passed ends the session.
func (h *Holder) Current(ctx context.Context) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, ok, err := h.kv.Get(ctx, store.SlotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	token := string(raw)

	if exp, ok := auth.TokenExpiry(token); ok && !h.now().Before(exp) {
		log.Printf("[Session] Token expired at %s, returning to guest mode", exp.Format(time.RFC3339))
		if err := h.clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	s, _, err := store.LoadJSON(ctx, h.kv, store.SlotUser, func() *Session { return &Session{} })
	if errors.Is(err, store.ErrMalformedSlot) {
		log.Printf("[Session] Ignoring unreadable user metadata: %v", err)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	if s == nil {
		// "null" in the user slot decodes to a nil pointer
		s = &Session{}
	}
	s.Token = token
	return s, nil
}

// Start stores a new session, replacing any previous one
func (h *Holder) Start(ctx context.Context, s Session) error {
	if s.Token == "" {
		return ErrMissingToken
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.kv.Set(ctx, store.SlotToken, []byte(s.Token)); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	if err := store.SaveJSON(ctx, h.kv, store.SlotUser, s); err != nil {
		return err
	}
	return nil
}

// End discards the session. The guest cart is left untouched.
func (h *Holder) End(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clear(ctx)
}

// Token returns the bearer token of the current session, or "" in guest mode
func (h *Holder) Token(ctx context.Context) (string, error) {
	s, err := h.Current(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

func (h *Holder) clear(ctx context.Context) error {
	if err := h.kv.Delete(ctx, store.SlotToken); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	if err := h.kv.Delete(ctx, store.SlotUser); err != nil {
		return fmt.Errorf("failed to clear user metadata: %w", err)
	}
	return nil
}
