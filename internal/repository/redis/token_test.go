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

func setupTokenStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTokenStore(client), mr
}

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	store, _ := setupTokenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-123", time.Hour))

	revoked, err := store.IsRevoked(ctx, "jti-123")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestTokenStore_NotRevoked(t *testing.T) {
	store, _ := setupTokenStore(t)

	revoked, err := store.IsRevoked(context.Background(), "unknown-jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_RevocationExpires(t *testing.T) {
	store, mr := setupTokenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-exp", time.Minute))

	// Advance the fake clock past the token's natural expiry.
	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-exp")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_Revoke_ExpiredTokenIsNoop(t *testing.T) {
	store, mr := setupTokenStore(t)

	require.NoError(t, store.Revoke(context.Background(), "jti-old", -time.Second))
	assert.False(t, mr.Exists("auth:revoked:jti-old"))
}
