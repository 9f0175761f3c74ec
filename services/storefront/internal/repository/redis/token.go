package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore implements repository.TokenStore with one expiring Redis key per
// token, scoped to a session. The cookie path has no meaning here and is ignored.
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore creates a token store for sessionID.
func NewTokenStore(client *redis.Client, sessionID string) *TokenStore {
	return &TokenStore{
		client: client,
		prefix: keyPrefix + sessionID + ":token:",
	}
}

// Set stores value for ttl. A non-positive ttl removes the token.
func (s *TokenStore) Set(ctx context.Context, name, value string, ttl time.Duration, _ string) error {
	if ttl <= 0 {
		return s.Clear(ctx, name)
	}
	if err := s.client.Set(ctx, s.prefix+name, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Get returns the token value, or "" when absent or expired.
func (s *TokenStore) Get(ctx context.Context, name string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return v, nil
}

// Clear removes the token.
func (s *TokenStore) Clear(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.prefix+name).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
