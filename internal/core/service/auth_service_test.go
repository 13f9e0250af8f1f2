package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/louis5103/auth-service/internal/core/domain"
	"github.com/louis5103/auth-service/internal/core/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubAccountRepo struct {
	users   map[string]*domain.User // keyed by id
	nextID  int
	findErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{users: make(map[string]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAccountRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	copy.ID = strconv.Itoa(r.nextID)
	r.nextID++
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAccountRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

type stubRevocationStore struct {
	entries map[string]time.Duration
	err     error
}

func newStubRevocationStore() *stubRevocationStore {
	return &stubRevocationStore{entries: make(map[string]time.Duration)}
}

func (s *stubRevocationStore) Revoke(_ context.Context, rawToken string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if ttl <= 0 {
		return nil
	}
	s.entries[rawToken] = ttl
	return nil
}

func (s *stubRevocationStore) IsRevoked(_ context.Context, rawToken string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.entries[rawToken]
	return ok, nil
}

func newTestService(repo *stubAccountRepo, rev *stubRevocationStore, ttl time.Duration) *AuthService {
	return NewAuthService(repo, rev, token.NewManager(testSecret, ttl, "auth-service"), zerolog.Nop())
}

func mustRegister(t *testing.T, svc *AuthService, email string, role domain.Role) *domain.AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), email, "s3cret-pass", "Tester", role)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return result
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), newStubRevocationStore(), time.Hour)

	result := mustRegister(t, svc, "alice@example.com", domain.RoleUser)
	if result.User.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token on registration")
	}
	if !result.User.IsActive {
		t.Fatalf("new account should be active")
	}
}

func TestAuthService_Register_DefaultsRole(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), newStubRevocationStore(), time.Hour)

	result := mustRegister(t, svc, "bob@example.com", "")
	if result.User.Role != domain.RoleUser {
		t.Fatalf("role = %s, want user", result.User.Role)
	}
}

func TestAuthService_Register_RejectsUnknownRole(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), newStubRevocationStore(), time.Hour)

	if _, err := svc.Register(context.Background(), "x@example.com", "pass", "X", "superuser"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), newStubRevocationStore(), time.Hour)

	mustRegister(t, svc, "dup@example.com", domain.RoleUser)
	if _, err := svc.Register(context.Background(), "dup@example.com", "other", "Dup", domain.RoleUser); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, newStubRevocationStore(), time.Hour)
	mustRegister(t, svc, "carol@example.com", domain.RoleAdmin)

	result, err := svc.Login(context.Background(), "carol@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if result.User.LastLoginAt == nil {
		t.Fatalf("expected last-login timestamp to be set")
	}
	if stored := repo.users[result.User.ID]; stored.LastLoginAt == nil {
		t.Fatalf("last-login not persisted")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), newStubRevocationStore(), time.Hour)
	mustRegister(t, svc, "dave@example.com", domain.RoleUser)

	if _, err := svc.Login(context.Background(), "dave@example.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailIsIndistinguishable(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), newStubRevocationStore(), time.Hour)

	// Same error as a wrong password, so callers cannot enumerate accounts.
	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, newStubRevocationStore(), time.Hour)
	result := mustRegister(t, svc, "off@example.com", domain.RoleUser)

	repo.users[result.User.ID].IsActive = false
	if _, err := svc.Login(context.Background(), "off@example.com", "s3cret-pass"); err != domain.ErrAccountDisabled {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_ValidateAfterIssue(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, newStubRevocationStore(), time.Hour)
	result := mustRegister(t, svc, "alice@example.com", domain.RoleUser)

	identity, err := svc.Validate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if identity.ID != result.User.ID {
		t.Fatalf("identity.ID = %s, want %s", identity.ID, result.User.ID)
	}
	if identity.Role != domain.RoleUser {
		t.Fatalf("identity.Role = %s, want user", identity.Role)
	}
	if !identity.IsActive {
		t.Fatalf("expected active identity")
	}
	if !identity.TokenExpiresAt.After(identity.TokenIssuedAt) {
		t.Fatalf("expiry %s not after issue time %s", identity.TokenExpiresAt, identity.TokenIssuedAt)
	}
}

func TestAuthService_Validate_DeactivatedAccount(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, newStubRevocationStore(), time.Hour)
	result := mustRegister(t, svc, "gone@example.com", domain.RoleUser)

	// The still-unexpired, unrevoked token must stop working the moment the
	// account is deactivated: claims are frozen at issue time.
	repo.users[result.User.ID].IsActive = false
	if _, err := svc.Validate(context.Background(), result.Token); err != domain.ErrAccountDisabled {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_Validate_DeletedAccount(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, newStubRevocationStore(), time.Hour)
	result := mustRegister(t, svc, "gone@example.com", domain.RoleUser)

	delete(repo.users, result.User.ID)
	if _, err := svc.Validate(context.Background(), result.Token); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Validate_ExpiredToken(t *testing.T) {
	repo := newStubAccountRepo()
	rev := newStubRevocationStore()
	svc := newTestService(repo, rev, time.Hour)
	result := mustRegister(t, svc, "late@example.com", domain.RoleUser)

	claims := token.Claims{
		Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   result.User.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Validate(context.Background(), expired); err != token.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_LogoutThenValidate(t *testing.T) {
	repo := newStubAccountRepo()
	rev := newStubRevocationStore()
	svc := newTestService(repo, rev, time.Hour)
	result := mustRegister(t, svc, "bye@example.com", domain.RoleUser)

	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// Signature and expiry alone would still pass; the denylist must win.
	if _, err := svc.Validate(context.Background(), result.Token); err != token.ErrRevokedToken {
		t.Fatalf("expected ErrRevokedToken, got %v", err)
	}
}

func TestAuthService_Logout_TTLMatchesRemainingLifetime(t *testing.T) {
	rev := newStubRevocationStore()
	svc := newTestService(newStubAccountRepo(), rev, 3600*time.Second)
	result := mustRegister(t, svc, "ttl@example.com", domain.RoleUser)

	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	ttl, ok := rev.entries[result.Token]
	if !ok {
		t.Fatalf("expected a revocation entry")
	}
	if ttl <= 3590*time.Second || ttl > 3600*time.Second {
		t.Fatalf("ttl = %s, want ~3600s", ttl)
	}
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	rev := newStubRevocationStore()
	svc := newTestService(newStubAccountRepo(), rev, time.Hour)
	result := mustRegister(t, svc, "twice@example.com", domain.RoleUser)

	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestAuthService_Logout_ExpiredTokenIsNoop(t *testing.T) {
	rev := newStubRevocationStore()
	svc := newTestService(newStubAccountRepo(), rev, time.Hour)

	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := svc.Logout(context.Background(), expired); err != nil {
		t.Fatalf("logout of expired token should be a no-op, got %v", err)
	}
	if len(rev.entries) != 0 {
		t.Fatalf("nothing should have been stored")
	}
}

func TestAuthService_Logout_StoreFailureSurfaces(t *testing.T) {
	rev := newStubRevocationStore()
	rev.err = fmt.Errorf("connection refused")
	svc := newTestService(newStubAccountRepo(), rev, time.Hour)

	signed, _, err := token.NewManager(testSecret, time.Hour, "auth-service").Issue("1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// The caller applies the fail-open policy; the service reports the truth.
	if err := svc.Logout(context.Background(), signed); err == nil {
		t.Fatalf("expected store failure to surface")
	}
}

func TestAuthService_Validate_StoreFailureFailsClosed(t *testing.T) {
	repo := newStubAccountRepo()
	rev := newStubRevocationStore()
	svc := newTestService(repo, rev, time.Hour)
	result := mustRegister(t, svc, "closed@example.com", domain.RoleUser)

	rev.err = fmt.Errorf("connection refused")
	if _, err := svc.Validate(context.Background(), result.Token); err == nil {
		t.Fatalf("expected validation to fail closed on store outage")
	}
}

func TestAuthService_Profile(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, newStubRevocationStore(), time.Hour)
	result := mustRegister(t, svc, "me@example.com", domain.RoleModerator)

	user, err := svc.Profile(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Email != "me@example.com" {
		t.Fatalf("unexpected profile: %+v", user)
	}
}
