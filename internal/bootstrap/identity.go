package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/portal-auth/config"
	"github.com/target/portal-auth/internal/adapters/firebase"
	"github.com/target/portal-auth/internal/adapters/localidp"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
	"github.com/target/portal-auth/internal/service"
)

// IdentityConfig contains configuration for the identity backend.
type IdentityConfig struct {
	Auth config.AuthConfig
	// Store backs local mode; OpenIdentity supplies the Redis user store.
	Store  ports.UserStore
	Logger *slog.Logger
}

// Identity is the wired identity backend.
type Identity struct {
	Provider *service.CredentialProvider
	// LocalIDP is set only in local mode.
	LocalIDP *localidp.Backend
}

// BuildIdentity creates the credential provider for the configured auth mode.
// Firebase initialization is deferred to first use; local mode is built
// eagerly because its sign-in routes are mounted at start.
func BuildIdentity(ctx context.Context, cfg IdentityConfig) (Identity, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Auth.Mode {
	case config.AuthModeFirebase:
		fbCfg := firebase.Config{
			CredentialsJSON: cfg.Auth.Firebase.CredentialsJSON,
			CredentialsFile: cfg.Auth.Firebase.CredentialsFile,
			ProjectID:       cfg.Auth.Firebase.ProjectID,
			Logger:          logger,
		}
		provider := service.NewCredentialProvider(service.CredentialProviderOptions{
			Factory: func(ctx context.Context) (ports.IdentityBackend, error) {
				return firebase.NewBackend(ctx, fbCfg)
			},
			Logger: logger,
		})
		return Identity{Provider: provider}, nil

	case config.AuthModeLocal:
		idp, err := buildLocalIDP(ctx, cfg, logger)
		if err != nil {
			return Identity{}, err
		}
		provider := service.NewCredentialProvider(service.CredentialProviderOptions{
			Factory: func(context.Context) (ports.IdentityBackend, error) { return idp, nil },
			Logger:  logger,
		})
		return Identity{Provider: provider, LocalIDP: idp}, nil

	default:
		return Identity{}, apperrors.Newf(apperrors.ErrCodeConfiguration, "unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildLocalIDP(ctx context.Context, cfg IdentityConfig, logger *slog.Logger) (*localidp.Backend, error) {
	store := cfg.Store
	if store == nil {
		return nil, apperrors.Configuration("local auth mode requires a user store")
	}

	local := cfg.Auth.LocalIDP
	idp, err := localidp.NewBackend(localidp.Config{
		SigningKey: []byte(local.SigningKey),
		Issuer:     local.Issuer,
		IDTokenTTL: local.IDTokenTTL,
		Store:      store,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	logger.WarnContext(ctx, "local identity backend enabled; not for production use", "issuer", local.Issuer)

	if local.HasSeedAdmin() {
		created, err := idp.SeedAdmin(ctx, local.SeedAdminEmail, local.SeedAdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			logger.InfoContext(ctx, "seed admin created", "email", local.SeedAdminEmail)
		}
	}
	return idp, nil
}
