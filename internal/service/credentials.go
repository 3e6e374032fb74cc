package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

// BackendFactory builds the identity backend. CredentialProvider calls it at most once.
type BackendFactory func(ctx context.Context) (ports.IdentityBackend, error)

// CredentialProviderOptions groups dependencies for CredentialProvider.
type CredentialProviderOptions struct {
	Factory BackendFactory
	Logger  *slog.Logger
}

// CredentialProvider is the process-wide handle to the identity backend.
// The backend is built lazily on first use behind a once-only gate; a failed
// build is remembered and every operation then fails with a configuration error.
type CredentialProvider struct {
	backend func() (ports.IdentityBackend, error)
}

var _ ports.IdentityBackend = (*CredentialProvider)(nil)

// NewCredentialProvider constructs a CredentialProvider. The factory is not invoked here.
func NewCredentialProvider(opts CredentialProviderOptions) *CredentialProvider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory := opts.Factory

	return &CredentialProvider{
		backend: sync.OnceValues(func() (ports.IdentityBackend, error) {
			if factory == nil {
				err := apperrors.Configuration("no identity backend configured")
				logger.Error("identity backend unavailable", "error", err)
				return nil, err
			}

			// Initialization is not tied to any one request's lifetime.
			b, err := factory(context.Background())
			if err == nil && b == nil {
				err = apperrors.Configuration("identity backend factory returned nil")
			}
			if err != nil {
				if !apperrors.IsConfiguration(err) {
					err = apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "initialize identity backend")
				}
				logger.Error("identity backend unavailable", "error", err)
				return nil, err
			}

			logger.Info("identity backend initialized")
			return b, nil
		}),
	}
}

// Backend returns the initialized backend, building it on first call.
//
//nolint:ireturn // callers need the port, not a concrete adapter.
func (p *CredentialProvider) Backend() (ports.IdentityBackend, error) {
	return p.backend()
}

// Ready reports whether the backend could be initialized.
func (p *CredentialProvider) Ready() error {
	_, err := p.backend()
	return err
}

func (p *CredentialProvider) VerifyIDToken(ctx context.Context, idToken string) (domainauth.Claims, error) {
	b, err := p.backend()
	if err != nil {
		return domainauth.Claims{}, err
	}
	return b.VerifyIDToken(ctx, idToken)
}

func (p *CredentialProvider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	b, err := p.backend()
	if err != nil {
		return "", err
	}
	return b.CreateSessionCookie(ctx, idToken, ttl)
}

func (p *CredentialProvider) VerifySessionCookie(
	ctx context.Context,
	cookie string,
	checkRevoked bool,
) (domainauth.Claims, error) {
	b, err := p.backend()
	if err != nil {
		return domainauth.Claims{}, err
	}
	return b.VerifySessionCookie(ctx, cookie, checkRevoked)
}

func (p *CredentialProvider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	b, err := p.backend()
	if err != nil {
		return err
	}
	return b.RevokeRefreshTokens(ctx, uid)
}

func (p *CredentialProvider) ListUsers(ctx context.Context, limit int) ([]domainauth.Identity, error) {
	b, err := p.backend()
	if err != nil {
		return nil, err
	}
	return b.ListUsers(ctx, limit)
}

func (p *CredentialProvider) CreateUser(ctx context.Context, in domainauth.NewUser) (domainauth.Identity, error) {
	b, err := p.backend()
	if err != nil {
		return domainauth.Identity{}, err
	}
	return b.CreateUser(ctx, in)
}

func (p *CredentialProvider) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	b, err := p.backend()
	if err != nil {
		return err
	}
	return b.SetCustomUserClaims(ctx, uid, claims)
}

func (p *CredentialProvider) GetUser(ctx context.Context, uid string) (domainauth.Identity, error) {
	b, err := p.backend()
	if err != nil {
		return domainauth.Identity{}, err
	}
	return b.GetUser(ctx, uid)
}
