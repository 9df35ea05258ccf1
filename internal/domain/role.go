package domain

import "strings"

// Role names a coarse-grained authority granted to a user.
type Role string

// RolePrefix is the canonical prefix every stored role carries.
const RolePrefix = "ROLE_"

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// NormalizeRole applies the canonical prefix when it is missing.
func NormalizeRole(raw string) Role {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, RolePrefix) {
		return Role(trimmed)
	}
	return Role(RolePrefix + trimmed)
}

// ParseRoles converts the comma-joined storage form into normalized roles.
// Normalization happens here, at the store boundary, and nowhere else.
func ParseRoles(raw string) []Role {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	roles := make([]Role, 0, len(parts))
	for _, part := range parts {
		if role := NormalizeRole(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

// JoinRoles renders roles back into the comma-joined storage form.
func JoinRoles(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ",")
}

// HasRole reports whether the set contains the role. Comparison is exact.
func HasRole(roles []Role, want Role) bool {
	for _, role := range roles {
		if role == want {
			return true
		}
	}
	return false
}
