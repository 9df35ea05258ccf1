package auth

import (
	"strings"

	"github.com/spec-kit/auth-service/internal/domain"
)

type requirementKind int

const (
	requirePublic requirementKind = iota
	requireAuthenticated
	requireRole
)

// Requirement states what a route demands of the caller.
type Requirement struct {
	kind requirementKind
	role domain.Role
}

// Public permits anonymous access.
func Public() Requirement { return Requirement{kind: requirePublic} }

// AuthenticatedAny demands a valid token with any roles.
func AuthenticatedAny() Requirement { return Requirement{kind: requireAuthenticated} }

// RequireRole demands a valid token carrying the given role.
func RequireRole(role domain.Role) Requirement {
	return Requirement{kind: requireRole, role: role}
}

// Rule binds a path pattern to a requirement. A pattern ending in "/**"
// matches any path under the prefix; anything else matches exactly.
type Rule struct {
	Pattern     string
	Requirement Requirement
}

// DenyReason distinguishes missing authentication from insufficient role.
type DenyReason int

const (
	ReasonUnauthenticated DenyReason = iota
	ReasonForbidden
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Policy is an ordered route-access table, first matching rule wins.
// Unmatched paths require authentication, so new routes start out closed.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from ordered rules. The rule table is read-only
// after construction and safe for concurrent use.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy covers the service's route surface.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Rule{Pattern: "/health/**", Requirement: Public()},
		Rule{Pattern: "/auth/welcome", Requirement: Public()},
		Rule{Pattern: "/auth/register", Requirement: Public()},
		Rule{Pattern: "/auth/login", Requirement: Public()},
		Rule{Pattern: "/auth/user/**", Requirement: RequireRole(domain.RoleUser)},
		Rule{Pattern: "/auth/admin/**", Requirement: RequireRole(domain.RoleAdmin)},
	)
}

// Authorize decides access for the path given the caller, nil meaning
// anonymous.
func (p *Policy) Authorize(path string, principal *Principal) Decision {
	requirement := AuthenticatedAny()
	for _, rule := range p.rules {
		if matchPattern(rule.Pattern, path) {
			requirement = rule.Requirement
			break
		}
	}

	switch requirement.kind {
	case requirePublic:
		return Decision{Allowed: true}
	case requireAuthenticated:
		if principal == nil {
			return Decision{Reason: ReasonUnauthenticated}
		}
		return Decision{Allowed: true}
	default:
		if principal == nil {
			return Decision{Reason: ReasonUnauthenticated}
		}
		if !principal.HasRole(requirement.role) {
			return Decision{Reason: ReasonForbidden}
		}
		return Decision{Allowed: true}
	}
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}
