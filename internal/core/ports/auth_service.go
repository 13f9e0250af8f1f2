package ports

import (
	"context"

	"github.com/louis5103/auth-service/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	// Logout revokes the presented token for its remaining lifetime. An
	// expired or unparseable token is a nil no-op. A revocation-store
	// outage is returned so the caller can fail open deliberately.
	Logout(ctx context.Context, rawToken string) error
	// Validate runs the full token validation chain and re-resolves the
	// account behind the token.
	Validate(ctx context.Context, rawToken string) (*domain.ResolvedIdentity, error)
	Profile(ctx context.Context, accountID string) (*domain.User, error)
}
