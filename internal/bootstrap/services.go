package bootstrap

import (
	"log/slog"

	"github.com/target/portal-auth/config"
	domainauth "github.com/target/portal-auth/internal/domain/auth"
	"github.com/target/portal-auth/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Identity      Identity
	Sessions      *service.SessionCodec
	Auth          *service.AuthService
	Admin         *service.AdminService
	Routes        domainauth.RouteTable
	Observability Observability
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config        *config.AppConfig
	Identity      Identity
	Observability Observability
	Logger        *slog.Logger
}

// RouteTableFrom maps route configuration onto the guard's route table.
func RouteTableFrom(cfg config.RoutesConfig) domainauth.RouteTable {
	routes := domainauth.DefaultRouteTable()
	if len(cfg.PublicPaths) > 0 {
		routes.PublicPaths = append([]string(nil), cfg.PublicPaths...)
	}
	if cfg.AdminPrefix != "" {
		routes.AdminPrefix = cfg.AdminPrefix
	}
	// The guard redirects anonymous requests to LoginPath, so it must stay reachable.
	if !routes.IsPublic(routes.LoginPath) {
		routes.PublicPaths = append(routes.PublicPaths, routes.LoginPath)
	}
	return routes
}

// NewServices wires the session, guard and admin services over the credential provider.
func NewServices(deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
		cfg.Sanitize()
	}
	obs := deps.Observability
	if obs.Recorder == nil {
		obs = BuildObservability(config.MetricsConfig{})
	}

	provider := deps.Identity.Provider
	routes := RouteTableFrom(cfg.Routes)

	codec := service.NewSessionCodec(service.SessionCodecOptions{
		Backend: provider,
		TTL:     cfg.Session.TTL,
	})

	return ServiceContainer{
		Identity: deps.Identity,
		Sessions: codec,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Codec:   codec,
			Backend: provider,
			Routes:  routes,
			Metrics: obs.Recorder,
			Logger:  logger,
		}),
		Admin: service.NewAdminService(service.AdminServiceOptions{
			Backend:  provider,
			PageSize: cfg.Routes.AdminListPageSize,
			Metrics:  obs.Recorder,
			Logger:   logger,
		}),
		Routes:        routes,
		Observability: obs,
	}
}
