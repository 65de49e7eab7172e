package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedSlot is returned by LoadJSON when the stored bytes cannot be decoded
var ErrMalformedSlot = errors.New("malformed slot content")

// LoadJSON decodes the value stored under key into a fresh T.
// Returns the zero-initialised value from newValue and false when the key is absent.
// Backend failures are returned as-is; undecodable content is reported as ErrMalformedSlot
// together with the fresh value so callers can fall back to it.
func LoadJSON[T any](ctx context.Context, kv KV, key string, newValue func() T) (T, bool, error) {
	value := newValue()

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return value, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	if !ok {
		return value, false, nil
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return newValue(), false, fmt.Errorf("%w: %s: %v", ErrMalformedSlot, key, err)
	}
	return value, true, nil
}

// SaveJSON encodes value and stores it under key
func SaveJSON(ctx context.Context, kv KV, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}
