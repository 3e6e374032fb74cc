// Package ports defines interfaces (hexagonal ports) for identity and session behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
)

// IdentityBackend is the trusted identity provider. Every call is a round trip;
// implementations map provider errors into internal/errors codes.
type IdentityBackend interface {
	// VerifyIDToken checks a short-lived ID token and returns its claims.
	VerifyIDToken(ctx context.Context, idToken string) (domainauth.Claims, error)

	// CreateSessionCookie mints a session artifact from a verified ID token.
	CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error)

	// VerifySessionCookie checks a session artifact. With checkRevoked the backend
	// also rejects artifacts issued before the user's last revocation.
	VerifySessionCookie(ctx context.Context, cookie string, checkRevoked bool) (domainauth.Claims, error)

	// RevokeRefreshTokens invalidates every artifact issued to uid so far.
	RevokeRefreshTokens(ctx context.Context, uid string) error

	// ListUsers returns up to limit identities.
	ListUsers(ctx context.Context, limit int) ([]domainauth.Identity, error)

	// CreateUser creates an identity.
	CreateUser(ctx context.Context, in domainauth.NewUser) (domainauth.Identity, error)

	// SetCustomUserClaims replaces the identity's custom claims.
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error

	// GetUser loads one identity.
	GetUser(ctx context.Context, uid string) (domainauth.Identity, error)
}

// StoredUser is the persisted form of a local identity.
type StoredUser struct {
	Identity     domainauth.Identity
	PasswordHash []byte
	// ValidAfter is the revocation watermark; artifacts issued at or before it are revoked.
	ValidAfter time.Time
}

// UserStore persists identities for the local identity backend.
type UserStore interface {
	// Create stores a new user; it fails with an email_exists error on duplicate emails.
	Create(ctx context.Context, u StoredUser) error
	Get(ctx context.Context, uid string) (StoredUser, error)
	GetByEmail(ctx context.Context, email string) (StoredUser, error)
	// List returns up to limit users in creation order.
	List(ctx context.Context, limit int) ([]StoredUser, error)
	// Patch applies p to the stored user atomically; fields p leaves unset are
	// never written, so concurrent patches of different fields cannot undo each other.
	Patch(ctx context.Context, uid string, p UserPatch) error
}

// UserPatch names the fields a Patch changes. Nil fields are left as stored.
type UserPatch struct {
	LastSignInAt *time.Time
	// ValidAfter only moves forward; an older stamp leaves the stored one in place.
	ValidAfter *time.Time
	Disabled   *bool
	// CustomClaims replaces the whole claims map when non-nil.
	CustomClaims map[string]any
}

// Apply returns u with the patch applied.
func (p UserPatch) Apply(u StoredUser) StoredUser {
	if p.LastSignInAt != nil {
		u.Identity.LastSignInAt = *p.LastSignInAt
	}
	if p.ValidAfter != nil && p.ValidAfter.After(u.ValidAfter) {
		u.ValidAfter = *p.ValidAfter
	}
	if p.Disabled != nil {
		u.Identity.Disabled = *p.Disabled
	}
	if p.CustomClaims != nil {
		claims := make(map[string]any, len(p.CustomClaims))
		for k, v := range p.CustomClaims {
			claims[k] = v
		}
		u.Identity.CustomClaims = claims
	}
	return u
}

// Clock provides the current time and can be swapped in tests.
type Clock interface {
	Now() time.Time
}
