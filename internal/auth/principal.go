package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the duration of one
// request. It is derived entirely from token claims and bound to the
// request-scoped locals, never shared between requests.
type Principal struct {
	Subject string
	Roles   []domain.Role
}

// HasRole reports whether the principal carries the role.
func (p *Principal) HasRole(role domain.Role) bool {
	if p == nil {
		return false
	}
	return domain.HasRole(p.Roles, role)
}

func bindPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

// PrincipalFromContext retrieves the authenticated caller, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
