package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletauth/ports"
)

// RedisStore is a Redis implementation of the Store interface
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.Cmdable) ports.Store {
	return &RedisStore{
		client: client,
		prefix: "walletauth:revoked:",
	}
}

// Revoke marks a session as revoked in Redis until ttl elapses
func (s *RedisStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.prefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// IsRevoked checks if a session is revoked in Redis
func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	val, err := s.client.Exists(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}

	return val > 0, nil
}

// Claim records id with SET NX, so only one caller across instances wins
func (s *RedisStore) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	ok, err := s.client.SetNX(ctx, s.prefix+id, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", id, err)
	}

	return ok, nil
}
