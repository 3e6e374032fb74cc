package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	"github.com/target/portal-auth/internal/service"
)

// AuthServiceInterface defines the auth service operations used by handlers and middleware.
type AuthServiceInterface interface {
	CreateSession(ctx context.Context, idToken string) (*service.CreateSessionResult, error)
	DestroySession(ctx context.Context, cookie string) service.DestroySessionResult
	ResolveSession(ctx context.Context, cookie string) domainauth.SessionOutcome
	Guard(ctx context.Context, cookie, path string) service.GuardResult
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			}
			if id := middleware.GetReqID(r.Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			logger.LogAttrs(r.Context(), slog.LevelInfo, "http", attrs...)
		})
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic",
						slog.Any("error", rec),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: "internal",
						Err:     errInternal,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePageAccess applies the access guard to page routes. Invalid cookies
// are cleared, redirects use 303, and a verified identity is placed in the
// request context.
func RequirePageAccess(authSvc AuthServiceInterface, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := authSvc.Guard(r.Context(), cookies.read(r), r.URL.Path)
			if res.ClearCookie {
				cookies.clear(w)
			}
			if res.Decision.Action == domainauth.GuardRedirect {
				http.Redirect(w, r, res.Decision.Location, http.StatusSeeOther)
				return
			}
			ctx := SetIdentityInContext(r.Context(), res.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin protects admin API routes. It re-derives the identity from the
// cookie on every request: no or invalid session is 401, a non-admin is 403.
func RequireAdmin(authSvc AuthServiceInterface, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := authSvc.ResolveSession(r.Context(), cookies.read(r))
			switch outcome.State {
			case domainauth.SessionNoArtifact:
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			case domainauth.SessionInvalid:
				cookies.clear(w)
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("session is invalid or expired"),
				})
				return
			}

			identity := identityFromOutcome(outcome)
			if !identity.IsAdmin() {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("admin role required"),
				})
				return
			}

			ctx := SetIdentityInContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromOutcome(o domainauth.SessionOutcome) *domainauth.Claims {
	if !o.Present() {
		return nil
	}
	c := o.Claims
	c.Role = c.EffectiveRole()
	return &c
}
