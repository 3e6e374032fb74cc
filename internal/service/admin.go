package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/observability/metrics"
	"github.com/target/portal-auth/internal/ports"
)

// MaxListPageSize is the largest page the identity backend returns in one call.
const MaxListPageSize = 1000

// AdminServiceOptions groups dependencies for AdminService.
type AdminServiceOptions struct {
	Backend  ports.IdentityBackend
	PageSize int
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// AdminService implements user management for admins.
type AdminService struct {
	backend  ports.IdentityBackend
	pageSize int
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAdminService constructs a new AdminService.
func NewAdminService(opts AdminServiceOptions) *AdminService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.PageSize
	if size <= 0 || size > MaxListPageSize {
		size = MaxListPageSize
	}
	return &AdminService{
		backend:  opts.Backend,
		pageSize: size,
		metrics:  metrics.OrNoop(opts.Metrics),
		logger:   logger,
	}
}

// UserSummary is the admin listing projection of an identity.
type UserSummary struct {
	UID   string
	Email string
	Role  domainauth.Role
	// RoleClaim is the stored role claim as written, including values that
	// are not a known role. Empty when the claim is missing or not a string.
	RoleClaim    string
	Disabled     bool
	LastSignInAt time.Time
	CreatedAt    time.Time
}

// ListUsers returns the first page of identities with their effective roles.
func (s *AdminService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	ids, err := s.backend.ListUsers(ctx, s.pageSize)
	s.metrics.AdminOperation("list", metrics.ResultFor(err), err)
	if err != nil {
		return nil, apperrors.MapBackendError(err, "list users")
	}

	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		rawRole, _ := id.CustomClaims[domainauth.RoleClaim].(string)
		out = append(out, UserSummary{
			UID:          id.UID,
			Email:        id.Email,
			Role:         id.Role(),
			RoleClaim:    rawRole,
			Disabled:     id.Disabled,
			LastSignInAt: id.LastSignInAt,
			CreatedAt:    id.CreatedAt,
		})
	}
	return out, nil
}

// CreateUserInput carries the admin create-user request.
type CreateUserInput struct {
	Email    string
	Password string
	Role     string // empty means user
}

// CreatedUser describes the identity created by CreateUser.
type CreatedUser struct {
	UID           string
	Email         string
	Role          domainauth.Role
	EmailVerified bool
	Disabled      bool
	CreatedAt     time.Time
}

// Validate checks required fields and the role.
func (in CreateUserInput) Validate() (domainauth.Role, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return "", apperrors.Validation("email and password are required")
	}
	if in.Role == "" {
		return domainauth.RoleUser, nil
	}
	role, ok := domainauth.ParseRole(in.Role)
	if !ok {
		return "", apperrors.ValidationField("role", "invalid role, allowed roles: "+domainauth.AllowedRolesString())
	}
	return role, nil
}

// CreateUser creates an unverified identity and assigns its role claim.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (CreatedUser, error) {
	created, err := s.createUser(ctx, in)
	s.metrics.AdminOperation("create", metrics.ResultFor(err), err)
	return created, err
}

func (s *AdminService) createUser(ctx context.Context, in CreateUserInput) (CreatedUser, error) {
	role, err := in.Validate()
	if err != nil {
		return CreatedUser{}, err
	}

	id, err := s.backend.CreateUser(ctx, domainauth.NewUser{
		Email:         strings.TrimSpace(in.Email),
		Password:      in.Password,
		EmailVerified: false,
	})
	if err != nil {
		return CreatedUser{}, apperrors.MapBackendError(err, "create user")
	}

	if err := s.backend.SetCustomUserClaims(ctx, id.UID, map[string]any{domainauth.RoleClaim: string(role)}); err != nil {
		// The identity exists without a role claim and resolves to user until retried.
		s.logger.ErrorContext(ctx, "assign role to new user failed", "uid", id.UID, "role", role, "error", err)
		return CreatedUser{}, apperrors.MapBackendError(err, "assign role")
	}

	s.logger.InfoContext(ctx, "user created", "uid", id.UID, "role", role)
	return CreatedUser{
		UID:           id.UID,
		Email:         id.Email,
		Role:          role,
		EmailVerified: id.EmailVerified,
		Disabled:      id.Disabled,
		CreatedAt:     id.CreatedAt,
	}, nil
}

// ChangeRoleInput carries the admin change-role request.
type ChangeRoleInput struct {
	Actor domainauth.Claims
	UID   string
	Role  string
}

// ChangeRole sets the target identity's role, merging it into the existing custom claims.
// Admins may change their own role; the change is logged at warn.
func (s *AdminService) ChangeRole(ctx context.Context, in ChangeRoleInput) (domainauth.Role, error) {
	role, err := s.changeRole(ctx, in)
	s.metrics.AdminOperation("change_role", metrics.ResultFor(err), err)
	return role, err
}

func (s *AdminService) changeRole(ctx context.Context, in ChangeRoleInput) (domainauth.Role, error) {
	if strings.TrimSpace(in.UID) == "" {
		return "", apperrors.ValidationField("uid", "uid is required")
	}
	role, ok := domainauth.ParseRole(in.Role)
	if !ok {
		return "", apperrors.ValidationField("role", "invalid role, allowed roles: "+domainauth.AllowedRolesString())
	}

	id, err := s.backend.GetUser(ctx, in.UID)
	if err != nil {
		return "", apperrors.MapBackendError(err, "get user")
	}

	if err := s.backend.SetCustomUserClaims(ctx, id.UID, domainauth.MergeRole(id.CustomClaims, role)); err != nil {
		return "", apperrors.MapBackendError(err, "set custom claims")
	}

	if in.Actor.UID == id.UID && role != domainauth.RoleAdmin {
		s.logger.WarnContext(ctx, "admin removed own admin role", "uid", id.UID)
	}
	s.logger.InfoContext(ctx, "user role changed",
		"uid", id.UID,
		"role", role,
		"actor", in.Actor.UID,
	)
	return role, nil
}
