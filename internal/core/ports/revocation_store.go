package ports

import (
	"context"
	"time"
)

// RevocationStore is a TTL-capable denylist of issued tokens.
//
// IsRevoked returns a non-nil error when the store is unreachable, which is
// distinct from a clean miss (false, nil). Callers choose the failure policy:
// the validator fails closed on a store error, the logout flow fails open.
type RevocationStore interface {
	// Revoke denylists a raw token for ttl. A ttl <= 0 is a no-op: the
	// token has already expired and there is nothing left to revoke.
	Revoke(ctx context.Context, rawToken string, ttl time.Duration) error

	// IsRevoked reports whether the raw token has been denylisted.
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}
