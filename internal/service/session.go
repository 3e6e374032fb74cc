package service

import (
	"context"
	"strings"
	"time"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

// DefaultSessionTTL is the session artifact lifetime (5 days).
const DefaultSessionTTL = 5 * 24 * time.Hour

// SessionCodecOptions groups dependencies for SessionCodec.
type SessionCodecOptions struct {
	Backend ports.IdentityBackend
	TTL     time.Duration
	Clock   ports.Clock
}

// SessionCodec issues and decodes session artifacts through the identity backend.
type SessionCodec struct {
	backend ports.IdentityBackend
	ttl     time.Duration
	clock   ports.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSessionCodec constructs a SessionCodec. A non-positive TTL falls back to DefaultSessionTTL.
func NewSessionCodec(opts SessionCodecOptions) *SessionCodec {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &SessionCodec{backend: opts.Backend, ttl: ttl, clock: clock}
}

// TTL returns the lifetime of issued artifacts.
func (c *SessionCodec) TTL() time.Duration { return c.ttl }

// Issue verifies an ID token and exchanges it for a session artifact.
func (c *SessionCodec) Issue(ctx context.Context, idToken string) (domainauth.SessionArtifact, domainauth.Claims, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return domainauth.SessionArtifact{}, domainauth.Claims{}, apperrors.ValidationField("idToken", "idToken is required")
	}

	claims, err := c.backend.VerifyIDToken(ctx, idToken)
	if err != nil {
		return domainauth.SessionArtifact{}, domainauth.Claims{}, asTokenError(err, "verify id token")
	}

	value, err := c.backend.CreateSessionCookie(ctx, idToken, c.ttl)
	if err != nil {
		return domainauth.SessionArtifact{}, domainauth.Claims{}, asTokenError(err, "create session cookie")
	}

	return domainauth.SessionArtifact{
		Value:     value,
		TTL:       c.ttl,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	}, claims, nil
}

// Decode verifies a session artifact with revocation checks. It never returns an error:
// failures are reported as SessionInvalid with the cause kept for logging.
func (c *SessionCodec) Decode(ctx context.Context, value string) domainauth.SessionOutcome {
	if value == "" {
		return domainauth.SessionOutcome{State: domainauth.SessionNoArtifact}
	}

	claims, err := c.backend.VerifySessionCookie(ctx, value, true)
	if err != nil {
		return domainauth.SessionOutcome{State: domainauth.SessionInvalid, Err: err}
	}
	return domainauth.SessionOutcome{State: domainauth.SessionValid, Claims: claims}
}

// asTokenError keeps credential and configuration errors as they are, folds
// expiry/revocation of an ID token into invalid_token, and maps the rest to backend errors.
func asTokenError(err error, op string) error {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidToken, apperrors.ErrCodeConfiguration:
		return err
	case apperrors.ErrCodeExpired, apperrors.ErrCodeRevoked, apperrors.ErrCodeMalformedArtifact:
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidToken, op)
	default:
		return apperrors.MapBackendError(err, op)
	}
}
