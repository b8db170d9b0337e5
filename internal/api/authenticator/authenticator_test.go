package authenticator

import (
	"context"
	"testing"
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthenticator(t *testing.T, secret string) *Authenticator {
	t.Helper()
	store := session.NewInMemoryStore()
	t.Cleanup(store.Stop)

	a, err := New(&config.Config{JWT_SECRET: secret, JWT_ISSUER: "devboard", TOKEN_TTL: time.Hour}, store)
	require.NoError(t, err)
	return a
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(&config.Config{}, session.NewInMemoryStore())
	assert.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestRoundTrip(t *testing.T) {
	a := newAuthenticator(t, "s3cret")
	ctx := context.Background()
	id := uuid.New()

	token, expiresAt, err := a.GenerateToken(id, "dev@example.com", authz.RoleDeveloper)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := a.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, authz.RoleDeveloper, claims.Role)
	assert.Equal(t, "dev@example.com", claims.Email)
}

func TestRejectsBadTokens(t *testing.T) {
	a := newAuthenticator(t, "s3cret")
	other := newAuthenticator(t, "different")
	ctx := context.Background()

	foreign, _, err := other.GenerateToken(uuid.New(), "x@example.com", authz.RoleManager)
	require.NoError(t, err)

	expired, _, err := a.GenerateToken(uuid.New(), "x@example.com", authz.RoleManager)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "devboard",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"malformed":      "not-a-token",
		"wrong secret":   foreign,
		"none algorithm": noneAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.VerifyAccessToken(ctx, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("expired", func(t *testing.T) {
		a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { a.now = time.Now }()

		_, err := a.VerifyAccessToken(ctx, expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	a := newAuthenticator(t, "s3cret")
	ctx := context.Background()

	token, _, err := a.GenerateToken(uuid.New(), "m@example.com", authz.RoleManager)
	require.NoError(t, err)

	claims, err := a.VerifyAccessToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, a.Revoke(ctx, claims))

	_, err = a.VerifyAccessToken(ctx, token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}
