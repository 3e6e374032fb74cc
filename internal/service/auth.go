package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	"github.com/target/portal-auth/internal/observability/metrics"
	"github.com/target/portal-auth/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Codec   *SessionCodec
	Backend ports.IdentityBackend
	Routes  domainauth.RouteTable
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// AuthService orchestrates session lifecycle and page access decisions.
type AuthService struct {
	codec   *SessionCodec
	backend ports.IdentityBackend
	routes  domainauth.RouteTable
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	routes := opts.Routes
	if len(routes.PublicPaths) == 0 && routes.AdminPrefix == "" {
		routes = domainauth.DefaultRouteTable()
	}
	return &AuthService{
		codec:   opts.Codec,
		backend: opts.Backend,
		routes:  routes,
		metrics: metrics.OrNoop(opts.Metrics),
		logger:  logger,
	}
}

// Routes returns the route table used for access decisions.
func (s *AuthService) Routes() domainauth.RouteTable { return s.routes }

// CreateSessionResult contains the issued artifact and the identity it belongs to.
type CreateSessionResult struct {
	Artifact domainauth.SessionArtifact
	Claims   domainauth.Claims
}

// CreateSession exchanges an ID token for a session artifact.
func (s *AuthService) CreateSession(ctx context.Context, idToken string) (*CreateSessionResult, error) {
	artifact, claims, err := s.codec.Issue(ctx, idToken)
	s.metrics.SessionOperation("create", metrics.ResultFor(err), err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session created", "uid", claims.UID)
	return &CreateSessionResult{Artifact: artifact, Claims: claims}, nil
}

// DestroySessionResult reports what logout managed to do. Logout itself never fails.
type DestroySessionResult struct {
	UID     string
	Revoked bool
}

// DestroySession revokes the identity's refresh tokens when the artifact still decodes.
// Revocation is best-effort: failures are logged and reported via Revoked=false.
func (s *AuthService) DestroySession(ctx context.Context, cookie string) DestroySessionResult {
	outcome := s.codec.Decode(ctx, cookie)
	switch outcome.State {
	case domainauth.SessionNoArtifact:
		s.metrics.SessionOperation("destroy", metrics.ResultNoop, nil)
		return DestroySessionResult{}
	case domainauth.SessionInvalid:
		s.logger.DebugContext(ctx, "logout with undecodable session", "error", outcome.Err)
		s.metrics.SessionOperation("destroy", metrics.ResultNoop, outcome.Err)
		return DestroySessionResult{}
	}

	uid := outcome.Claims.UID
	if err := s.backend.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.WarnContext(ctx, "revoke refresh tokens failed", "uid", uid, "error", err)
		s.metrics.SessionOperation("revoke", metrics.ResultError, err)
		return DestroySessionResult{UID: uid}
	}

	s.metrics.SessionOperation("revoke", metrics.ResultSuccess, nil)
	s.logger.InfoContext(ctx, "session destroyed", "uid", uid)
	return DestroySessionResult{UID: uid, Revoked: true}
}

// ResolveSession decodes the artifact without making a routing decision.
func (s *AuthService) ResolveSession(ctx context.Context, cookie string) domainauth.SessionOutcome {
	outcome := s.codec.Decode(ctx, cookie)
	if outcome.State == domainauth.SessionInvalid {
		s.logger.WarnContext(ctx, "session verification failed", "error", outcome.Err)
		s.metrics.SessionOperation("decode", metrics.ResultError, outcome.Err)
	}
	return outcome
}

// GuardResult is the access guard's verdict for one page request.
type GuardResult struct {
	Decision domainauth.GuardDecision
	Outcome  domainauth.SessionOutcome
	// ClearCookie is set when a presented artifact failed verification.
	ClearCookie bool
}

// Identity returns the decoded claims when the session is valid.
func (r GuardResult) Identity() *domainauth.Claims {
	if !r.Outcome.Present() {
		return nil
	}
	c := r.Outcome.Claims
	c.Role = c.EffectiveRole()
	return &c
}

// Guard runs the access guard: decode the artifact, then apply the routing rules.
func (s *AuthService) Guard(ctx context.Context, cookie, path string) GuardResult {
	res := GuardResult{Outcome: s.ResolveSession(ctx, cookie)}
	res.ClearCookie = res.Outcome.State == domainauth.SessionInvalid
	res.Decision = s.routes.Decide(path, res.Identity())

	s.metrics.GuardDecision(string(res.Decision.Reason), res.Outcome.State.String())
	if res.Decision.Action == domainauth.GuardRedirect {
		s.logger.DebugContext(ctx, "access guard redirect",
			"path", path,
			"location", res.Decision.Location,
			"reason", res.Decision.Reason,
		)
	}
	return res
}
