package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sudar-ai/classroom-api/internal/config"
)

// NewRedisClient builds a universal Redis client from configuration and
// verifies connectivity before returning it.
func NewRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	addresses := cfg.Addrs
	if len(addresses) == 0 {
		if cfg.Addr == "" {
			return nil, fmt.Errorf("redis configuration error: addrs or addr must be provided")
		}
		addresses = []string{cfg.Addr}
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addresses,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis (addrs: %v): %w", addresses, err)
	}

	return client, nil
}
