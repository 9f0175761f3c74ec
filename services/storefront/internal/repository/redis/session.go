package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// SessionRepository hands out per-session stores backed by one Redis hash per session.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository. Every write
// extends the session's lifetime to ttl.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// For returns the store holding sessionID's values.
func (r *SessionRepository) For(sessionID string) *SessionStore {
	return &SessionStore{
		client: r.client,
		key:    keyPrefix + sessionID,
		ttl:    r.ttl,
	}
}

// SessionStore implements repository.SessionStore for a single session.
type SessionStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// Get returns the value stored under field, or nil when absent.
func (s *SessionStore) Get(ctx context.Context, field string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis hget session: %w", err)
	}
	return data, nil
}

// Put stores value under field and refreshes the session expiry.
func (s *SessionStore) Put(ctx context.Context, field string, value []byte) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, field, value)
	pipe.Expire(ctx, s.key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset session: %w", err)
	}
	return nil
}
