package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/portal-auth/config"
	"github.com/target/portal-auth/internal/ports"
)

// OpenIdentity connects the infrastructure the configured auth mode needs and
// builds the identity backend. The returned close func releases it.
func OpenIdentity(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Identity, func(), error) {
	var store ports.UserStore
	closeFn := func() {}

	if cfg.Auth.Mode == config.AuthModeLocal {
		conn, err := OpenUserStore(ctx, cfg.Redis, logger)
		if err != nil {
			return Identity{}, closeFn, fmt.Errorf("open user store: %w", err)
		}
		store = conn.Store
		closeFn = func() {
			if cerr := conn.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}
	}

	identity, err := BuildIdentity(ctx, IdentityConfig{
		Auth:   cfg.Auth,
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		closeFn()
		return Identity{}, func() {}, fmt.Errorf("build identity backend: %w", err)
	}
	return identity, closeFn, nil
}

// Run wires every component and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting portal-auth",
		"auth_mode", cfg.Auth.Mode,
		"addr", cfg.HTTP.Addr,
		"session_ttl", cfg.Session.TTL,
		"public_paths", cfg.Routes.PublicPaths,
		"admin_prefix", cfg.Routes.AdminPrefix,
	)

	identity, closeIdentity, err := OpenIdentity(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeIdentity()

	obs := BuildObservability(cfg.Observability.Metrics)
	services := NewServices(&ServiceDeps{
		Config:        cfg,
		Identity:      identity,
		Observability: obs,
		Logger:        logger,
	})

	server := NewHTTPServer(cfg.HTTP.Addr, BuildHTTPHandler(cfg, services, logger))
	return ServeHTTP(ctx, server, cfg.HTTP.ShutdownTimeout, logger)
}
