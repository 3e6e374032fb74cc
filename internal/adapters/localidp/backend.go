// Package localidp is a self-contained identity backend for development and
// single-node deployments. It signs ID tokens and session artifacts with an
// HMAC key and stores users through a ports.UserStore.
package localidp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

const (
	// MinSigningKeyLength is the shortest HMAC key accepted.
	MinSigningKeyLength = 32
	// MinPasswordLength matches the hosted backend's password rule.
	MinPasswordLength = 6
	// DefaultIDTokenTTL is the lifetime of tokens returned by SignIn.
	DefaultIDTokenTTL = time.Hour
	// DefaultIssuer is used when Config.Issuer is empty.
	DefaultIssuer = "portal-auth-local"

	minSessionTTL = 5 * time.Minute
	maxSessionTTL = 14 * 24 * time.Hour
)

// reservedClaims cannot be set as custom claims.
var reservedClaims = map[string]struct{}{
	"aud": {}, "exp": {}, "iat": {}, "iss": {}, "jti": {}, "nbf": {}, "sub": {},
	"email": {}, "email_verified": {}, "kind": {}, "iat_ns": {},
}

// Config configures a local Backend.
type Config struct {
	SigningKey []byte
	Issuer     string
	IDTokenTTL time.Duration
	Store      ports.UserStore
	Clock      ports.Clock
	Logger     *slog.Logger
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// NewID generates user ids and token ids; defaults to uuid.NewString.
	NewID func() string
}

// Backend implements ports.IdentityBackend without any external provider.
type Backend struct {
	key        []byte
	issuer     string
	idTokenTTL time.Duration
	store      ports.UserStore
	clock      ports.Clock
	logger     *slog.Logger
	cost       int
	newID      func() string
}

var _ ports.IdentityBackend = (*Backend)(nil)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewBackend validates cfg and returns a Backend.
func NewBackend(cfg Config) (*Backend, error) {
	if len(cfg.SigningKey) < MinSigningKeyLength {
		return nil, apperrors.Newf(apperrors.ErrCodeConfiguration,
			"local identity signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if cfg.Store == nil {
		return nil, apperrors.Configuration("local identity backend requires a user store")
	}

	b := &Backend{
		key:        cfg.SigningKey,
		issuer:     cfg.Issuer,
		idTokenTTL: cfg.IDTokenTTL,
		store:      cfg.Store,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		cost:       cfg.BcryptCost,
		newID:      cfg.NewID,
	}
	if b.issuer == "" {
		b.issuer = DefaultIssuer
	}
	if b.idTokenTTL <= 0 {
		b.idTokenTTL = DefaultIDTokenTTL
	}
	if b.clock == nil {
		b.clock = systemClock{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.cost == 0 {
		b.cost = bcrypt.DefaultCost
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b, nil
}

func (b *Backend) VerifyIDToken(_ context.Context, idToken string) (domainauth.Claims, error) {
	claims, err := b.parse(idToken, kindID, apperrors.ErrCodeInvalidToken)
	if err != nil {
		return domainauth.Claims{}, err
	}
	return claims.toDomain(), nil
}

func (b *Backend) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	if ttl < minSessionTTL || ttl > maxSessionTTL {
		return "", apperrors.Validationf("session ttl must be between %s and %s", minSessionTTL, maxSessionTTL)
	}
	tc, err := b.parse(idToken, kindID, apperrors.ErrCodeInvalidToken)
	if err != nil {
		return "", err
	}
	// An ID token minted before a revocation cannot be exchanged.
	if err := b.checkRevocation(ctx, tc.Subject, tc.IssuedAtNano); err != nil {
		return "", err
	}
	return b.mint(mintInput{kind: kindSession, claims: tc.toDomain(), ttl: ttl, now: b.clock.Now()})
}

func (b *Backend) VerifySessionCookie(
	ctx context.Context,
	cookie string,
	checkRevoked bool,
) (domainauth.Claims, error) {
	tc, err := b.parse(cookie, kindSession, apperrors.ErrCodeMalformedArtifact)
	if err != nil {
		return domainauth.Claims{}, err
	}
	if checkRevoked {
		if err := b.checkRevocation(ctx, tc.Subject, tc.IssuedAtNano); err != nil {
			return domainauth.Claims{}, err
		}
	}
	return tc.toDomain(), nil
}

// checkRevocation rejects tokens for missing or disabled users and tokens
// stamped at or before the user's watermark.
func (b *Backend) checkRevocation(ctx context.Context, uid string, issuedNano int64) error {
	u, err := b.store.Get(ctx, uid)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Wrap(err, apperrors.ErrCodeRevoked, "user no longer exists")
		}
		return apperrors.MapBackendError(err, "load user")
	}
	if u.Identity.Disabled {
		return apperrors.New(apperrors.ErrCodeRevoked, "user disabled")
	}
	if !u.ValidAfter.IsZero() && issuedNano <= u.ValidAfter.UnixNano() {
		return apperrors.New(apperrors.ErrCodeRevoked, "token issued before revocation")
	}
	return nil
}

func (b *Backend) RevokeRefreshTokens(ctx context.Context, uid string) error {
	now := b.clock.Now()
	if err := b.store.Patch(ctx, uid, ports.UserPatch{ValidAfter: &now}); err != nil {
		return apperrors.MapBackendError(err, "revoke tokens")
	}
	b.logger.Debug("revoked tokens", "uid", uid)
	return nil
}

func (b *Backend) ListUsers(ctx context.Context, limit int) ([]domainauth.Identity, error) {
	users, err := b.store.List(ctx, limit)
	if err != nil {
		return nil, apperrors.MapBackendError(err, "list users")
	}
	out := make([]domainauth.Identity, 0, len(users))
	for _, u := range users {
		out = append(out, u.Identity)
	}
	return out, nil
}

func (b *Backend) CreateUser(ctx context.Context, in domainauth.NewUser) (domainauth.Identity, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if len(in.Password) < MinPasswordLength {
		return domainauth.Identity{}, apperrors.Newf(apperrors.ErrCodeWeakPassword,
			"password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), b.cost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeWeakPassword, "password rejected")
	}

	u := ports.StoredUser{
		Identity: domainauth.Identity{
			UID:           b.newID(),
			Email:         email,
			EmailVerified: in.EmailVerified,
			CreatedAt:     b.clock.Now().UTC(),
		},
		PasswordHash: hash,
	}
	if err := b.store.Create(ctx, u); err != nil {
		return domainauth.Identity{}, apperrors.MapBackendError(err, "create user")
	}
	b.logger.Info("local user created", "uid", u.Identity.UID, "email", email)
	return u.Identity, nil
}

func (b *Backend) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	for k := range claims {
		if _, reserved := reservedClaims[k]; reserved {
			return apperrors.ValidationField(k, "claim name is reserved")
		}
	}
	next := make(map[string]any, len(claims))
	for k, v := range claims {
		next[k] = v
	}
	if err := b.store.Patch(ctx, uid, ports.UserPatch{CustomClaims: next}); err != nil {
		return apperrors.MapBackendError(err, "set custom claims")
	}
	return nil
}

func (b *Backend) GetUser(ctx context.Context, uid string) (domainauth.Identity, error) {
	u, err := b.store.Get(ctx, uid)
	if err != nil {
		return domainauth.Identity{}, apperrors.MapBackendError(err, "get user")
	}
	return u.Identity, nil
}

// SignIn checks an email and password and returns a fresh ID token.
func (b *Backend) SignIn(ctx context.Context, email, password string) (string, domainauth.Identity, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", domainauth.Identity{}, apperrors.Unauthenticated("invalid email or password")
	}
	u, err := b.store.GetByEmail(ctx, normalized)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", domainauth.Identity{}, apperrors.Unauthenticated("invalid email or password")
		}
		return "", domainauth.Identity{}, apperrors.MapBackendError(err, "load user")
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return "", domainauth.Identity{}, apperrors.Unauthenticated("invalid email or password")
	}
	if u.Identity.Disabled {
		return "", domainauth.Identity{}, apperrors.Forbidden("user disabled")
	}

	now := b.clock.Now()
	signedIn := now.UTC()
	if err := b.store.Patch(ctx, u.Identity.UID, ports.UserPatch{LastSignInAt: &signedIn}); err != nil {
		return "", domainauth.Identity{}, apperrors.MapBackendError(err, "record sign-in")
	}
	// Mint from the stored record so claims changed during sign-in are honored.
	if u, err = b.store.Get(ctx, u.Identity.UID); err != nil {
		return "", domainauth.Identity{}, apperrors.MapBackendError(err, "load user")
	}
	if u.Identity.Disabled {
		return "", domainauth.Identity{}, apperrors.Forbidden("user disabled")
	}

	token, err := b.mint(mintInput{
		kind: kindID,
		claims: domainauth.Claims{
			UID:           u.Identity.UID,
			Email:         u.Identity.Email,
			EmailVerified: u.Identity.EmailVerified,
			Role:          roleClaim(u.Identity.CustomClaims),
		},
		ttl: b.idTokenTTL,
		now: now,
	})
	if err != nil {
		return "", domainauth.Identity{}, err
	}
	return token, u.Identity, nil
}

// SignUp creates a user with the default role and signs them in.
func (b *Backend) SignUp(ctx context.Context, email, password string) (string, domainauth.Identity, error) {
	if _, err := b.CreateUser(ctx, domainauth.NewUser{Email: email, Password: password}); err != nil {
		return "", domainauth.Identity{}, err
	}
	return b.SignIn(ctx, email, password)
}

// SeedAdmin creates an admin with the given credentials unless the email is
// already registered. It reports whether a user was created.
func (b *Backend) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	if _, err := b.store.GetByEmail(ctx, normalized); err == nil {
		return false, nil
	} else if !apperrors.IsNotFound(err) {
		return false, apperrors.MapBackendError(err, "load user")
	}

	id, err := b.CreateUser(ctx, domainauth.NewUser{Email: normalized, Password: password, EmailVerified: true})
	if err != nil {
		return false, err
	}
	if err := b.SetCustomUserClaims(ctx, id.UID, map[string]any{domainauth.RoleClaim: string(domainauth.RoleAdmin)}); err != nil {
		return false, err
	}
	b.logger.Warn("seeded local admin", "uid", id.UID, "email", normalized)
	return true, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, ok := domainauth.ParseEmail(raw)
	if !ok {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidEmail, "invalid email %q", raw)
	}
	return strings.ToLower(addr), nil
}

func roleClaim(claims map[string]any) domainauth.Role {
	if v, ok := claims[domainauth.RoleClaim].(string); ok {
		if r, valid := domainauth.ParseRole(v); valid {
			return r
		}
	}
	return ""
}
