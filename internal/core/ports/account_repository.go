package ports

import (
	"context"
	"time"

	"github.com/louis5103/auth-service/internal/core/domain"
)

// AccountRepository defines the persistence interface for accounts. The
// validator path only ever reads by id; the remaining methods serve the
// login and registration flows.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
