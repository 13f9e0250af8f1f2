package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/louis5103/auth-service/internal/core/domain"
	"github.com/louis5103/auth-service/internal/core/ports"
	"github.com/louis5103/auth-service/internal/core/token"
)

// AuthService implements registration, login, logout, and the per-request
// token validation chain.
type AuthService struct {
	repo        ports.AccountRepository
	revocations ports.RevocationStore
	tokens      *token.Manager
	log         zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, revocations ports.RevocationStore, tokens *token.Manager, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, revocations: revocations, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.AuthResult, error) {
	if email == "" || password == "" || name == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.issueFor(created)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password collapse into the same error so callers cannot probe which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issueFor(user)
	if err != nil {
		return nil, err
	}

	// Best-effort bookkeeping; a failed write must not fail the login.
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("account_id", user.ID).Msg("last-login update failed")
	} else {
		result.User.LastLoginAt = &now
	}

	return result, nil
}

// Logout denylists the presented token for its remaining lifetime. An
// unparseable or already-expired token is a nil no-op. A revocation-store
// failure is returned as-is so the caller can apply the fail-open policy
// deliberately: the client discarding the token is the primary defense, so
// logout must still succeed.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.Revoke(ctx, rawToken, ttl); err != nil {
		s.log.Warn().Err(err).Str("account_id", claims.Subject).Msg("token revocation failed, relying on natural expiry")
		return err
	}
	return nil
}

// Validate runs the full validation chain: signature and expiry first (no
// claim is trusted before that), then the revocation check and the account
// re-fetch concurrently, since both are independent reads. The re-fetch is
// deliberate: token claims are frozen at issue time and cannot reflect a
// deactivation or role change on their own.
//
// A revocation-store or account-store failure fails closed.
func (s *AuthService) Validate(ctx context.Context, rawToken string) (*domain.ResolvedIdentity, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}

	var (
		revoked bool
		user    *domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revoked, err = s.revocations.IsRevoked(gctx, rawToken)
		if err != nil {
			return fmt.Errorf("revocation check: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		user, err = s.repo.FindByID(gctx, claims.Subject)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if revoked {
		return nil, token.ErrRevokedToken
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	return &domain.ResolvedIdentity{
		ID:             user.ID,
		Role:           user.Role,
		IsActive:       user.IsActive,
		TokenIssuedAt:  claims.IssuedAt.Time,
		TokenExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, accountID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, accountID)
}

func (s *AuthService) issueFor(user *domain.User) (*domain.AuthResult, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}
