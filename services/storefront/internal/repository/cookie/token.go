package cookie

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// TokenStore implements repository.TokenStore over browser cookies for a
// single request. Writes go to the response and are also visible to later
// reads within the same request.
type TokenStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool

	mu      sync.Mutex
	written map[string]string
}

// NewTokenStore creates a cookie token store for one request/response pair.
func NewTokenStore(w http.ResponseWriter, r *http.Request, secure bool) *TokenStore {
	return &TokenStore{
		w:       w,
		r:       r,
		secure:  secure,
		written: make(map[string]string),
	}
}

// Set writes a cookie expiring after ttl. A non-positive ttl expires the cookie.
// The value is query-escaped so bytes net/http would drop survive the round trip.
func (s *TokenStore) Set(_ context.Context, name, value string, ttl time.Duration, path string) error {
	if ttl <= 0 {
		s.expire(name, path)
		return nil
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     path,
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.mu.Lock()
	s.written[name] = value
	s.mu.Unlock()
	return nil
}

// Get returns the value written earlier in this request, else the request's
// cookie value, else "".
func (s *TokenStore) Get(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	v, ok := s.written[name]
	s.mu.Unlock()
	if ok {
		return v, nil
	}

	c, err := s.r.Cookie(name)
	if err != nil {
		return "", nil
	}
	v, err = url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value, nil
	}
	return v, nil
}

// Clear expires the cookie.
func (s *TokenStore) Clear(_ context.Context, name string) error {
	s.expire(name, "/")
	return nil
}

func (s *TokenStore) expire(name, path string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.mu.Lock()
	s.written[name] = ""
	s.mu.Unlock()
}
