package store

import "context"

// Slot names used by the storefront client. Each slot holds one value.
const (
	SlotGuestCart = "guest_cart"
	SlotToken     = "token"
	SlotUser      = "user"
	SlotTheme     = "theme"
)

// KV defines the interface for durable client-side key-value storage
type KV interface {
	// Get returns the value stored under key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
