package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	"github.com/target/portal-auth/internal/service"
)

// AdminServiceInterface defines the admin operations used by AdminHandlers.
type AdminServiceInterface interface {
	ListUsers(ctx context.Context) ([]service.UserSummary, error)
	CreateUser(ctx context.Context, in service.CreateUserInput) (service.CreatedUser, error)
	ChangeRole(ctx context.Context, in service.ChangeRoleInput) (domainauth.Role, error)
}

// AdminHandlers provides the admin user-management API. Routes must be
// wrapped with RequireAdmin.
type AdminHandlers struct {
	Svc    AdminServiceInterface
	Logger *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type userListItem struct {
	UID            string `json:"uid"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Disabled       bool   `json:"disabled"`
	LastSignInTime string `json:"lastSignInTime,omitempty"`
	CreationTime   string `json:"creationTime,omitempty"`
}

type createdUserBody struct {
	UID           string          `json:"uid"`
	Email         string          `json:"email"`
	Role          domainauth.Role `json:"role"`
	EmailVerified bool            `json:"emailVerified"`
	Disabled      bool            `json:"disabled"`
	CreationTime  string          `json:"creationTime,omitempty"`
}

// httpTime formats t like the identity backend's user metadata; zero is omitted.
func httpTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(http.TimeFormat)
}

// List returns the first page of users.
// GET /admin/users.
func (h *AdminHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}

	out := make([]userListItem, 0, len(users))
	for _, u := range users {
		// Show the claim as stored so admins can spot values the guard treats as user.
		role := u.RoleClaim
		if role == "" {
			role = string(u.Role)
		}
		out = append(out, userListItem{
			UID:            u.UID,
			Email:          u.Email,
			Role:           role,
			Disabled:       u.Disabled,
			LastSignInTime: httpTime(u.LastSignInAt),
			CreationTime:   httpTime(u.CreatedAt),
		})
	}
	WriteJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create creates a user and assigns its role.
// POST /admin/users/create.
func (h *AdminHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	created, err := h.Svc.CreateUser(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "user created",
		"user": createdUserBody{
			UID:           created.UID,
			Email:         created.Email,
			Role:          created.Role,
			EmailVerified: created.EmailVerified,
			Disabled:      created.Disabled,
			CreationTime:  httpTime(created.CreatedAt),
		},
	})
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole sets a user's role, preserving their other custom claims.
// POST /admin/users/{uid}/role.
func (h *AdminHandlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	in := service.ChangeRoleInput{UID: chi.URLParam(r, "uid"), Role: req.Role}
	if actor, ok := IdentityFromContext(r.Context()); ok {
		in.Actor = *actor
	}

	role, err := h.Svc.ChangeRole(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"uid":     in.UID,
		"newRole": role,
	})
}
