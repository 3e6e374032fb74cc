package httpx

import (
	"context"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
type identityKey struct{}

// SetIdentityInContext returns a child context that carries the verified identity.
// If identity is nil, the original ctx is returned unchanged.
func SetIdentityInContext(ctx context.Context, identity *domainauth.Claims) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the verified identity and whether one is present.
func IdentityFromContext(ctx context.Context) (*domainauth.Claims, bool) {
	if c, ok := ctx.Value(identityKey{}).(*domainauth.Claims); ok && c != nil {
		return c, true
	}
	return nil, false
}

// IsAnonymous reports whether the request context carries no identity.
func IsAnonymous(ctx context.Context) bool {
	_, ok := IdentityFromContext(ctx)
	return !ok
}
