package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "revoked_jti:"

// RevokedTokenRepo keeps the logout denylist in Redis. Each entry expires
// together with the token it shadows, so the set never needs sweeping.
type RevokedTokenRepo struct {
	client redis.UniversalClient
}

func NewRevokedTokenRepo(client redis.UniversalClient) (*RevokedTokenRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RevokedTokenRepo{client: client}, nil
}

func (r *RevokedTokenRepo) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already past expiry; nothing to deny.
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", jti, err)
	}
	return nil
}

func (r *RevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token %s: %w", jti, err)
	}
	return n > 0, nil
}
