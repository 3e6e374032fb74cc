package localidp

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
)

// Token kinds. An ID token can never be used as a session artifact and vice versa.
const (
	kindID      = "id"
	kindSession = "session"
)

type tokenClaims struct {
	jwt.RegisteredClaims

	Kind          string `json:"kind"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role,omitempty"`
	// IssuedAtNano is compared against the user's revocation watermark.
	IssuedAtNano int64 `json:"iat_ns"`
}

func (c *tokenClaims) toDomain() domainauth.Claims {
	out := domainauth.Claims{
		UID:           c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
	}
	if r, ok := domainauth.ParseRole(c.Role); ok {
		out.Role = r
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

type mintInput struct {
	kind   string
	claims domainauth.Claims
	ttl    time.Duration
	now    time.Time
}

func (b *Backend) mint(in mintInput) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    b.issuer,
			Subject:   in.claims.UID,
			Audience:  jwt.ClaimStrings{b.issuer},
			IssuedAt:  jwt.NewNumericDate(in.now),
			NotBefore: jwt.NewNumericDate(in.now),
			ExpiresAt: jwt.NewNumericDate(in.now.Add(in.ttl)),
			ID:        b.newID(),
		},
		Kind:          in.kind,
		Email:         in.claims.Email,
		EmailVerified: in.claims.EmailVerified,
		Role:          string(in.claims.Role),
		IssuedAtNano:  in.now.UnixNano(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeBackend, "sign token")
	}
	return signed, nil
}

// parse verifies signature, issuer, audience, time bounds and kind.
// badCode is the error code for anything other than expiry.
func (b *Backend) parse(raw, kind string, badCode apperrors.ErrorCode) (*tokenClaims, error) {
	if raw == "" {
		return nil, apperrors.New(badCode, "token is empty")
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return b.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(b.issuer),
		jwt.WithAudience(b.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeExpired, "token expired")
		}
		return nil, apperrors.Wrap(err, badCode, "token rejected")
	}
	if claims.Kind != kind {
		return nil, apperrors.Newf(badCode, "expected %s token, got %q", kind, claims.Kind)
	}
	if claims.Subject == "" {
		return nil, apperrors.New(badCode, "token has no subject")
	}
	return claims, nil
}
