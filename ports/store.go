package ports

import (
	"context"
	"time"
)

// Store records revoked session ids until they would have expired anyway
type Store interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	// Claim atomically records id for ttl. It reports false when id was already recorded.
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
}
