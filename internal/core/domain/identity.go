package domain

import "time"

// ResolvedIdentity is the outcome of a successful token validation: the
// account as it exists right now, plus the token's own timestamps. It never
// carries the password hash.
type ResolvedIdentity struct {
	ID             string    `json:"id"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"isActive"`
	TokenIssuedAt  time.Time `json:"tokenIssuedAt"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt"`
}

// AuthResult is returned by login and registration: a freshly issued token
// plus the account it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
