// Package firebase adapts the Firebase Admin SDK to the IdentityBackend port.
package firebase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 6

// authClient is the subset of *auth.Client used by Backend.
type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// userLister pages through the project's users.
type userLister func(ctx context.Context, limit int) ([]*auth.ExportedUserRecord, error)

// Backend implements ports.IdentityBackend on Firebase Authentication.
type Backend struct {
	client authClient
	list   userLister
	logger *slog.Logger
}

var _ ports.IdentityBackend = (*Backend)(nil)

// NewBackend initializes the Firebase app and auth client from cfg.
func NewBackend(ctx context.Context, cfg Config) (*Backend, error) {
	opt, source, err := credentialOption(cfg)
	if err != nil {
		return nil, err
	}

	var appCfg *fb.Config
	if cfg.ProjectID != "" {
		appCfg = &fb.Config{ProjectID: cfg.ProjectID}
	}
	app, err := fb.NewApp(ctx, appCfg, opt)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "initialize firebase app")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "initialize firebase auth client")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("firebase auth client ready", "credentials", source, "project_id", cfg.ProjectID)

	return &Backend{client: client, list: iterateUsers(client), logger: logger}, nil
}

func iterateUsers(client *auth.Client) userLister {
	return func(ctx context.Context, limit int) ([]*auth.ExportedUserRecord, error) {
		it := client.Users(ctx, "")
		out := make([]*auth.ExportedUserRecord, 0, limit)
		for len(out) < limit {
			u, err := it.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
		return out, nil
	}
}

func (b *Backend) VerifyIDToken(ctx context.Context, idToken string) (domainauth.Claims, error) {
	tok, err := b.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return domainauth.Claims{}, mapIDTokenError(err)
	}
	return claimsFromToken(tok), nil
}

func (b *Backend) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	cookie, err := b.client.SessionCookie(ctx, idToken, ttl)
	if err != nil {
		return "", mapIDTokenError(err)
	}
	return cookie, nil
}

func (b *Backend) VerifySessionCookie(
	ctx context.Context,
	cookie string,
	checkRevoked bool,
) (domainauth.Claims, error) {
	var (
		tok *auth.Token
		err error
	)
	if checkRevoked {
		tok, err = b.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	} else {
		tok, err = b.client.VerifySessionCookie(ctx, cookie)
	}
	if err != nil {
		return domainauth.Claims{}, mapSessionCookieError(err)
	}
	return claimsFromToken(tok), nil
}

func (b *Backend) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := b.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return mapUserError(err, "revoke refresh tokens")
	}
	return nil
}

func (b *Backend) ListUsers(ctx context.Context, limit int) ([]domainauth.Identity, error) {
	records, err := b.list(ctx, limit)
	if err != nil {
		return nil, apperrors.MapBackendError(err, "list users")
	}
	out := make([]domainauth.Identity, 0, len(records))
	for _, r := range records {
		if r == nil || r.UserRecord == nil {
			continue
		}
		out = append(out, identityFromRecord(r.UserRecord))
	}
	return out, nil
}

func (b *Backend) CreateUser(ctx context.Context, in domainauth.NewUser) (domainauth.Identity, error) {
	email, err := validateNewUser(in)
	if err != nil {
		return domainauth.Identity{}, err
	}

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(in.Password).
		EmailVerified(in.EmailVerified)
	rec, err := b.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeEmailExists, "email already in use")
		}
		return domainauth.Identity{}, apperrors.MapBackendError(err, "create user")
	}
	return identityFromRecord(rec), nil
}

func (b *Backend) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	if err := b.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return mapUserError(err, "set custom claims")
	}
	return nil
}

func (b *Backend) GetUser(ctx context.Context, uid string) (domainauth.Identity, error) {
	rec, err := b.client.GetUser(ctx, uid)
	if err != nil {
		return domainauth.Identity{}, mapUserError(err, "get user")
	}
	return identityFromRecord(rec), nil
}

// validateNewUser applies the SDK's client-side rules up front so callers get typed errors.
// It returns the trimmed email to send.
func validateNewUser(in domainauth.NewUser) (string, error) {
	email, ok := domainauth.ParseEmail(in.Email)
	if !ok {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidEmail, "invalid email %q", in.Email)
	}
	if len(in.Password) < MinPasswordLength {
		return "", apperrors.Newf(apperrors.ErrCodeWeakPassword,
			"password must be at least %d characters", MinPasswordLength)
	}
	return email, nil
}

func mapIDTokenError(err error) error {
	switch {
	case auth.IsIDTokenExpired(err):
		return apperrors.Wrap(err, apperrors.ErrCodeExpired, "id token expired")
	case auth.IsIDTokenRevoked(err), auth.IsUserDisabled(err):
		return apperrors.Wrap(err, apperrors.ErrCodeRevoked, "id token revoked")
	case auth.IsIDTokenInvalid(err):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidToken, "invalid id token")
	default:
		return apperrors.MapBackendError(err, "verify id token")
	}
}

func mapSessionCookieError(err error) error {
	switch {
	case auth.IsSessionCookieExpired(err):
		return apperrors.Wrap(err, apperrors.ErrCodeExpired, "session expired")
	case auth.IsSessionCookieRevoked(err), auth.IsUserDisabled(err):
		return apperrors.Wrap(err, apperrors.ErrCodeRevoked, "session revoked")
	case auth.IsSessionCookieInvalid(err):
		return apperrors.Wrap(err, apperrors.ErrCodeMalformedArtifact, "invalid session cookie")
	default:
		return apperrors.MapBackendError(err, "verify session cookie")
	}
}

func mapUserError(err error, op string) error {
	if auth.IsUserNotFound(err) {
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "user not found")
	}
	return apperrors.MapBackendError(err, op)
}

func claimsFromToken(tok *auth.Token) domainauth.Claims {
	if tok == nil {
		return domainauth.Claims{}
	}
	c := domainauth.Claims{
		UID:       tok.UID,
		IssuedAt:  time.Unix(tok.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(tok.Expires, 0).UTC(),
	}
	if c.UID == "" {
		c.UID = tok.Subject
	}
	if v, ok := tok.Claims["email"].(string); ok {
		c.Email = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		c.EmailVerified = v
	}
	if v, ok := tok.Claims[domainauth.RoleClaim].(string); ok {
		if r, valid := domainauth.ParseRole(v); valid {
			c.Role = r
		}
	}
	return c
}

func identityFromRecord(rec *auth.UserRecord) domainauth.Identity {
	if rec == nil {
		return domainauth.Identity{}
	}
	id := domainauth.Identity{
		EmailVerified: rec.EmailVerified,
		Disabled:      rec.Disabled,
		CustomClaims:  rec.CustomClaims,
	}
	if rec.UserInfo != nil {
		id.UID = rec.UID
		id.Email = rec.Email
	}
	if rec.UserMetadata != nil {
		id.CreatedAt = fromMillis(rec.UserMetadata.CreationTimestamp)
		id.LastSignInAt = fromMillis(rec.UserMetadata.LastLogInTimestamp)
	}
	return id
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
