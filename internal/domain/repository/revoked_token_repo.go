package repository

import (
	"context"
	"time"
)

// RevokedTokenRepository is the logout denylist. Entries are keyed by the
// token's JTI and live only until the token would have expired anyway.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
