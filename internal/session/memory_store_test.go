package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Stop()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	revoked, err = s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	// already expired tokens need no entry
	require.NoError(t, s.Revoke(ctx, "b", time.Now().Add(-time.Second)))
	revoked, err = s.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryStorePurge(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "a", time.Now().Add(time.Minute)))

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	revoked, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	s.purge()
	assert.Empty(t, s.revoked)
}
