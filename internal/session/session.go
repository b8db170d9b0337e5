// Package session tracks revoked session tokens until they would have expired
// on their own.
package session

import (
	"context"
	"time"
)

// RevocationStore records token ids that must no longer be accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
