package cart

import (
	"context"
	"errors"
	"log"

	"github.com/example/storefront-client/internal/infrastructure/store"
)

// Store persists the guest cart under a single slot
type Store struct {
	kv store.KV
}

func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Read returns the persisted guest cart.
// Absent or malformed content yields an empty cart; only backend failures are errors.
func (s *Store) Read(ctx context.Context) (GuestCart, error) {
	lines, _, err := store.LoadJSON(ctx, s.kv, store.SlotGuestCart, func() GuestCart { return GuestCart{} })
	if errors.Is(err, store.ErrMalformedSlot) {
		log.Printf("[Cart] Ignoring unreadable guest cart: %v", err)
		return GuestCart{}, nil
	}
	if err != nil {
		return GuestCart{}, err
	}
	if lines == nil {
		return GuestCart{}, nil
	}
	return lines.normalize(), nil
}

// Write replaces the persisted guest cart
func (s *Store) Write(ctx context.Context, lines GuestCart) error {
	if lines == nil {
		lines = GuestCart{}
	}
	return store.SaveJSON(ctx, s.kv, store.SlotGuestCart, lines)
}

// Clear removes the guest cart slot entirely
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, store.SlotGuestCart)
}

// AddLine merges line into the guest cart by variant and persists the result
func (s *Store) AddLine(ctx context.Context, line Line) (GuestCart, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}

	current, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}

	updated := current.Add(line)
	if err := s.Write(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
