// Package auth contains domain-level types for identities, sessions and routing tiers.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"net/mail"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// It is carried in the identity's custom claims under RoleClaim.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// RoleClaim is the custom-claims key that stores the role.
const RoleClaim = "role"

// AllowedRoles lists the roles that may be assigned through the admin API.
var AllowedRoles = []Role{RoleAdmin, RoleUser}

// Valid reports whether r is one of AllowedRoles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole validates a role string. Matching is exact; "Admin" is not a role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// AllowedRolesString renders AllowedRoles for error messages.
func AllowedRolesString() string {
	parts := make([]string, 0, len(AllowedRoles))
	for _, r := range AllowedRoles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}

// RoleFromClaims extracts the role from a custom-claims map.
// Missing, non-string or unknown values resolve to RoleUser.
func RoleFromClaims(claims map[string]any) Role {
	raw, ok := claims[RoleClaim].(string)
	if !ok {
		return RoleUser
	}
	if r, valid := ParseRole(raw); valid {
		return r
	}
	return RoleUser
}

// MergeRole returns a copy of claims with the role replaced. Other keys are preserved.
func MergeRole(claims map[string]any, role Role) map[string]any {
	merged := make(map[string]any, len(claims)+1)
	for k, v := range claims {
		merged[k] = v
	}
	merged[RoleClaim] = string(role)
	return merged
}

// Identity is a user record as owned by the identity backend.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Disabled      bool
	CustomClaims  map[string]any
	CreatedAt     time.Time
	LastSignInAt  time.Time // zero when the user never signed in
}

// Role returns the identity's effective role.
func (i Identity) Role() Role { return RoleFromClaims(i.CustomClaims) }

// ParseEmail returns the trimmed address when raw is a bare RFC 5322 address.
// Display-name forms such as "Bob <bob@example.com>" are rejected.
func ParseEmail(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", false
	}
	return trimmed, true
}

// NewUser carries the fields needed to create an identity.
type NewUser struct {
	Email         string
	Password      string
	EmailVerified bool
}

// Claims is the decoded view of an ID token or session artifact.
type Claims struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Role          Role      `json:"role,omitempty"` // empty when the token carried no role claim
	IssuedAt      time.Time `json:"-"`
	ExpiresAt     time.Time `json:"-"`
}

// EffectiveRole returns the role, defaulting to RoleUser.
func (c Claims) EffectiveRole() Role {
	if c.Role == "" {
		return RoleUser
	}
	return c.Role
}

// IsAdmin reports whether the claims grant admin access.
func (c Claims) IsAdmin() bool { return c.EffectiveRole() == RoleAdmin }
