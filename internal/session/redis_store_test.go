package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	assert.Equal(t, "revoked_session:abc", NewRedisStore(client, "").key("abc"))
	assert.Equal(t, "devboard:abc", NewRedisStore(client, "devboard:").key("abc"))
}

func TestRedisStoreSkipsExpiredTokens(t *testing.T) {
	// No server is listening; an expired token must not reach redis at all.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	defer client.Close()

	s := NewRedisStore(client, "")
	assert.NoError(t, s.Revoke(context.Background(), "abc", time.Now().Add(-time.Minute)))
	assert.Error(t, s.Revoke(context.Background(), "abc", time.Now().Add(time.Minute)))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "devboard:")
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "abc", time.Now().Add(time.Minute)))
	assert.True(t, mr.Exists("devboard:abc"))
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL("devboard:abc").Seconds(), 5)

	revoked, err = s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "other")
	require.NoError(t, err)
	assert.False(t, revoked)

	// the revocation lapses with the token
	mr.FastForward(2 * time.Minute)
	revoked, err = s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}
