package domain

// Role identifies an account's privilege level.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// roleHierarchy maps each role to every role requirement it satisfies.
// The mapping is reflexive and fixed at startup.
var roleHierarchy = map[Role][]Role{
	RoleAdmin:     {RoleAdmin, RoleModerator, RoleUser},
	RoleModerator: {RoleModerator, RoleUser},
	RoleUser:      {RoleUser},
}

// roleDisplayNames holds the human-readable (Korean) names used in
// client-facing authorization messages.
var roleDisplayNames = map[Role]string{
	RoleAdmin:     "관리자",
	RoleModerator: "운영자",
	RoleUser:      "일반 사용자",
}

// IsValid reports whether the role is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	default:
		return false
	}
}

// Satisfies reports whether this role meets a required role. A role unknown
// to the hierarchy satisfies only itself.
func (r Role) Satisfies(required Role) bool {
	effective, ok := roleHierarchy[r]
	if !ok {
		return r == required
	}
	for _, e := range effective {
		if e == required {
			return true
		}
	}
	return false
}

// DisplayName returns the localized name for the role, falling back to the
// raw value for roles outside the fixed set.
func (r Role) DisplayName() string {
	if name, ok := roleDisplayNames[r]; ok {
		return name
	}
	return string(r)
}
