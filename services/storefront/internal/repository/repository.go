package repository

import (
	"context"
	"time"
)

// SessionStore is the per-user session key-value store.
type SessionStore interface {
	// Get returns the raw value stored under key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// TokenStore is a durable, expiring name/value store that outlives the
// session, such as a browser cookie.
type TokenStore interface {
	// Set stores value under name for ttl, scoped to path.
	Set(ctx context.Context, name, value string, ttl time.Duration, path string) error

	// Get returns the value stored under name, or "" when absent or expired.
	Get(ctx context.Context, name string) (string, error)

	// Clear expires the token immediately.
	Clear(ctx context.Context, name string) error
}
