package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenStore(t *testing.T, sessionID string) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTokenStore(client, sessionID), mr
}

func TestTokenStore_SetGet(t *testing.T) {
	store, mr := setupTokenStore(t, "sess-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart_id", "c1", 30*time.Minute, "/"))

	got, err := store.Get(ctx, "cart_id")
	require.NoError(t, err)
	assert.Equal(t, "c1", got)
	assert.Equal(t, 30*time.Minute, mr.TTL("session:sess-1:token:cart_id"))
}

func TestTokenStore_Expires(t *testing.T) {
	store, mr := setupTokenStore(t, "sess-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart_id", "c1", time.Minute, "/"))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "cart_id")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenStore_ClearAndNonPositiveTTL(t *testing.T) {
	store, mr := setupTokenStore(t, "sess-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart_id", "c1", time.Hour, "/"))
	require.NoError(t, store.Clear(ctx, "cart_id"))
	assert.False(t, mr.Exists("session:sess-1:token:cart_id"))

	require.NoError(t, store.Set(ctx, "cart_id", "c2", time.Hour, "/"))
	require.NoError(t, store.Set(ctx, "cart_id", "c3", 0, "/"))
	got, err := store.Get(ctx, "cart_id")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenStore_GetAbsent(t *testing.T) {
	store, _ := setupTokenStore(t, "sess-1")

	got, err := store.Get(context.Background(), "cart_id")
	require.NoError(t, err)
	assert.Empty(t, got)
}
