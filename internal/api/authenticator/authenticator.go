package authenticator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// UserClaims is the payload of a session token. The subject is the user id.
type UserClaims struct {
	jwt.RegisteredClaims
	Role  authz.Role `json:"role"`
	Email string     `json:"email"`
}

func (c *UserClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Authenticator issues and verifies HS256 session tokens.
type Authenticator struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	revoked session.RevocationStore
	now     func() time.Time
}

func New(conf *config.Config, revoked session.RevocationStore) (*Authenticator, error) {
	if conf.JWT_SECRET == "" {
		return nil, config.ErrMissingJWTSecret
	}

	return &Authenticator{
		secret:  []byte(conf.JWT_SECRET),
		issuer:  conf.JWT_ISSUER,
		ttl:     conf.TOKEN_TTL,
		revoked: revoked,
		now:     time.Now,
	}, nil
}

func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// GenerateToken signs a session token for a user.
func (a *Authenticator) GenerateToken(userID uuid.UUID, email string, role authz.Role) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:  role,
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresAt, nil
}

// VerifyAccessToken checks signature, issuer, expiry and revocation.
func (a *Authenticator) VerifyAccessToken(ctx context.Context, accessToken string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	},
		jwt.WithIssuer(a.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !token.Valid || !ok || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// Revoke stops claims from being accepted until they expire.
func (a *Authenticator) Revoke(ctx context.Context, claims *UserClaims) error {
	if claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	return a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
