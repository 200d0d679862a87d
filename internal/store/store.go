// Package store is the key-value abstraction behind per-user ephemeral
// state: pending payment reviews, game sessions and admin prompts.
// The in-memory backend keeps state process-local; the Redis backend lets
// several bot processes share it.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("key not found")

// KV is a byte-oriented key-value store. Implementations must be safe for
// concurrent use across users.
type KV interface {
	// Get returns the value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Swap stores value and returns the previous value, or nil if there was none.
	Swap(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error)
	// Take atomically reads and deletes the value, or returns ErrNotFound.
	// Of several concurrent callers at most one receives the value.
	Take(ctx context.Context, key string) ([]byte, error)
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
