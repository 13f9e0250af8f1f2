package access

import (
	"fmt"
	"strings"

	"github.com/louis5103/auth-service/internal/core/domain"
)

// Outcome is the terminal state of an access decision.
type Outcome int

const (
	OutcomeAllow Outcome = iota
	OutcomeUnauthenticated
	OutcomeForbidden
)

// Decision is the tagged result of evaluating a requirement against an
// identity. Message is client-safe: generic for Unauthenticated, role-naming
// for Forbidden. Translation to an HTTP status happens at the boundary.
type Decision struct {
	Outcome Outcome
	Message string
}

// Decide evaluates a non-public requirement against a resolved identity.
// A nil identity is Unauthenticated. An empty role set allows any identity;
// otherwise the identity's role must satisfy at least one required role via
// the role hierarchy.
func Decide(identity *domain.ResolvedIdentity, req Requirement) Decision {
	if identity == nil {
		return Decision{Outcome: OutcomeUnauthenticated, Message: "authentication required"}
	}
	if len(req.Roles) == 0 {
		return Decision{Outcome: OutcomeAllow}
	}
	for _, required := range req.Roles {
		if identity.Role.Satisfies(required) {
			return Decision{Outcome: OutcomeAllow}
		}
	}
	return Decision{
		Outcome: OutcomeForbidden,
		Message: forbiddenMessage(req.Roles, identity.Role),
	}
}

// forbiddenMessage names the required and actual roles in their localized
// form, e.g. "접근 권한이 없습니다. 필요한 권한: 관리자 또는 운영자, 현재 권한: 일반 사용자".
func forbiddenMessage(required []domain.Role, actual domain.Role) string {
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = r.DisplayName()
	}
	return fmt.Sprintf("접근 권한이 없습니다. 필요한 권한: %s, 현재 권한: %s",
		strings.Join(names, " 또는 "), actual.DisplayName())
}
