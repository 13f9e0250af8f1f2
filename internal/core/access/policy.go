// Package access decides, per request, whether authentication is required
// and whether a resolved identity's role satisfies the route's requirement.
// Route requirements are declared in an explicit registry at startup; the
// decision itself is a pure function over immutable data.
package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louis5103/auth-service/internal/core/domain"
)

// Requirement is the access metadata attached to a route: either public,
// or restricted to a role set. An empty role set means any authenticated
// identity is allowed.
type Requirement struct {
	Public bool
	Roles  []domain.Role
}

// Public marks a route as requiring no identity at all.
func Public() Requirement {
	return Requirement{Public: true}
}

// Authenticated allows any identity regardless of role.
func Authenticated() Requirement {
	return Requirement{}
}

// RequireRoles restricts a route to identities satisfying at least one of
// the given roles.
func RequireRoles(roles ...domain.Role) Requirement {
	return Requirement{Roles: roles}
}

// Registry holds route requirements, registered once at startup. Per-route
// entries take precedence over group defaults (most specific scope wins);
// routes matching nothing fall back to Authenticated.
type Registry struct {
	routes   map[string]Requirement
	defaults map[string]Requirement
}

func NewRegistry() *Registry {
	return &Registry{
		routes:   make(map[string]Requirement),
		defaults: make(map[string]Requirement),
	}
}

// Set registers a requirement for an exact method+path pair. Path is the
// route pattern as registered with the router (e.g. "/admin/accounts/:id").
func (r *Registry) Set(method, path string, req Requirement) {
	r.routes[routeKey(method, path)] = req
}

// SetDefault registers a group-level requirement applying to every route
// under the given path prefix unless overridden per route.
func (r *Registry) SetDefault(prefix string, req Requirement) {
	r.defaults[prefix] = req
}

// Resolve returns the requirement governing the given route. Lookup order:
// exact route, then the longest matching group prefix, then Authenticated.
func (r *Registry) Resolve(method, path string) Requirement {
	if req, ok := r.routes[routeKey(method, path)]; ok {
		return req
	}

	bestLen := -1
	var best Requirement
	for prefix, req := range r.defaults {
		if strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			bestLen = len(prefix)
			best = req
		}
	}
	if bestLen >= 0 {
		return best
	}
	return Authenticated()
}

// Validate rejects contradictory metadata: a route cannot be public and
// role-restricted at the same time. Called once at startup.
func (r *Registry) Validate() error {
	keys := make([]string, 0, len(r.routes)+len(r.defaults))
	for k := range r.routes {
		keys = append(keys, k)
	}
	for k := range r.defaults {
		keys = append(keys, "prefix "+k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		req, ok := r.routes[k]
		if !ok {
			req = r.defaults[strings.TrimPrefix(k, "prefix ")]
		}
		if req.Public && len(req.Roles) > 0 {
			return fmt.Errorf("access: route %q is both public and role-restricted", k)
		}
	}
	return nil
}

func routeKey(method, path string) string {
	return method + " " + path
}
