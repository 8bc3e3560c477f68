package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("key not found")

// Cache is a small expiring counter store.
type Cache interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr increments key and returns the new value. The expiration is set
	// only when the increment created the key.
	Incr(ctx context.Context, key string, expiration time.Duration) (int64, error)
	// TTL returns the remaining lifetime of key, or ErrNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}
