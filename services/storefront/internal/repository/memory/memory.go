package memory

import (
	"context"
	"slices"
	"sync"
	"time"
)

// SessionStore is an in-process repository.SessionStore for a single session.
type SessionStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewSessionStore creates an empty in-memory session.
func NewSessionStore() *SessionStore {
	return &SessionStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or nil.
func (s *SessionStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.values[key]), nil
}

// Put stores a copy of value under key.
func (s *SessionStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = slices.Clone(value)
	return nil
}

type token struct {
	value     string
	path      string
	expiresAt time.Time
}

// TokenStore is an in-process repository.TokenStore honoring TTLs.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]token
	now    func() time.Time
}

// NewTokenStore creates an empty token store using the wall clock.
func NewTokenStore() *TokenStore {
	return NewTokenStoreWithClock(time.Now)
}

// NewTokenStoreWithClock creates an empty token store reading time from now.
func NewTokenStoreWithClock(now func() time.Time) *TokenStore {
	return &TokenStore{tokens: make(map[string]token), now: now}
}

// Set stores value for ttl. A non-positive ttl removes the token.
func (s *TokenStore) Set(_ context.Context, name, value string, ttl time.Duration, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		delete(s.tokens, name)
		return nil
	}
	s.tokens[name] = token{value: value, path: path, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the token value, or "" when absent or expired.
func (s *TokenStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[name]
	if !ok || !s.now().Before(t.expiresAt) {
		return "", nil
	}
	return t.value, nil
}

// Clear removes the token.
func (s *TokenStore) Clear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, name)
	return nil
}

// ExpiresAt reports when the named token expires; zero when absent.
func (s *TokenStore) ExpiresAt(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[name].expiresAt
}
