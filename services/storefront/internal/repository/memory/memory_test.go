package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_GetAbsent(t *testing.T) {
	s := NewSessionStore()

	got, err := s.Get(context.Background(), "carts")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_PutCopiesValue(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	value := []byte(`{"IT":{}}`)
	require.NoError(t, s.Put(ctx, "carts", value))
	value[0] = 'X'

	got, err := s.Get(ctx, "carts")
	require.NoError(t, err)
	assert.Equal(t, `{"IT":{}}`, string(got))
}

func TestTokenStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart_id", "c1", time.Minute, "/"))
	got, _ := s.Get(ctx, "cart_id")
	assert.Equal(t, "c1", got)
	assert.Equal(t, now.Add(time.Minute), s.ExpiresAt("cart_id"))

	now = now.Add(time.Minute)
	got, _ = s.Get(ctx, "cart_id")
	assert.Empty(t, got)
}

func TestTokenStore_NonPositiveTTLRemoves(t *testing.T) {
	s := NewTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart_id", "c1", time.Hour, "/"))
	require.NoError(t, s.Set(ctx, "cart_id", "c2", -time.Hour, "/"))

	got, _ := s.Get(ctx, "cart_id")
	assert.Empty(t, got)
}

func TestTokenStore_Clear(t *testing.T) {
	s := NewTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart_id", "c1", time.Hour, "/"))
	require.NoError(t, s.Clear(ctx, "cart_id"))

	got, _ := s.Get(ctx, "cart_id")
	assert.Empty(t, got)
	assert.True(t, s.ExpiresAt("cart_id").IsZero())
}
