// Package guard throttles repeated failed logins for the same account key.
//
// Counting is keyed on the submitted email whether or not such a user
// exists, so a lockout reveals nothing about registered accounts.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounts-be/internal/cache"
)

const (
	failPrefix = "login:fail:"
	lockPrefix = "login:lock:"
)

type LoginGuard struct {
	store       cache.Cache
	maxAttempts int64
	window      time.Duration
	lockout     time.Duration
}

// New returns a guard that locks a key for lockout after maxAttempts
// failures within window.
func New(store cache.Cache, maxAttempts int, window, lockout time.Duration) *LoginGuard {
	return &LoginGuard{
		store:       store,
		maxAttempts: int64(maxAttempts),
		window:      window,
		lockout:     lockout,
	}
}

// Check returns how long key stays locked, or 0 if logins are allowed.
func (g *LoginGuard) Check(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := g.store.TTL(ctx, lockPrefix+key)
	if errors.Is(err, cache.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read lock: %w", err)
	}
	if ttl <= 0 {
		// lock without expiry should not exist; treat as a full lockout
		return g.lockout, nil
	}
	return ttl, nil
}

// RecordFailure counts one failed attempt. When the limit is reached it
// places the lock and returns its duration; otherwise it returns 0.
func (g *LoginGuard) RecordFailure(ctx context.Context, key string) (time.Duration, error) {
	n, err := g.store.Incr(ctx, failPrefix+key, g.window)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempt: %w", err)
	}
	if n < g.maxAttempts {
		return 0, nil
	}

	if err := g.store.Set(ctx, lockPrefix+key, "1", g.lockout); err != nil {
		return 0, fmt.Errorf("failed to set lock: %w", err)
	}
	if err := g.store.Delete(ctx, failPrefix+key); err != nil {
		return 0, fmt.Errorf("failed to reset attempts: %w", err)
	}
	return g.lockout, nil
}

// Reset clears the failure count after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, key string) error {
	return g.store.Delete(ctx, failPrefix+key)
}
