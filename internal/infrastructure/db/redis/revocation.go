package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationStore is the Redis-backed token denylist. Entries carry a TTL
// equal to the token's remaining lifetime, so the registry never outlives a
// token and never forgets one early — Redis expiry does the cleanup, no
// sweep loop required.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke denylists the raw token for ttl. A ttl <= 0 means the token has
// already expired; storing it would only waste memory, so the call is a
// no-op. Re-revoking an already-revoked token just refreshes the entry.
func (s *RevocationStore) Revoke(ctx context.Context, rawToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+rawToken, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocation set: %w", err)
	}
	return nil
}

// IsRevoked reports whether the raw token has been denylisted. An unreachable
// store surfaces as an error, distinct from a clean miss.
func (s *RevocationStore) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+rawToken).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}
