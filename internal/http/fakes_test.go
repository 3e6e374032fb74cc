package httpx

import (
	"context"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	"github.com/target/portal-auth/internal/service"
)

type fakeAuthService struct {
	createFn  func(ctx context.Context, idToken string) (*service.CreateSessionResult, error)
	destroyFn func(ctx context.Context, cookie string) service.DestroySessionResult
	resolveFn func(ctx context.Context, cookie string) domainauth.SessionOutcome
	guardFn   func(ctx context.Context, cookie, path string) service.GuardResult

	destroyedWith []string
}

func (f *fakeAuthService) CreateSession(ctx context.Context, idToken string) (*service.CreateSessionResult, error) {
	return f.createFn(ctx, idToken)
}

func (f *fakeAuthService) DestroySession(ctx context.Context, cookie string) service.DestroySessionResult {
	f.destroyedWith = append(f.destroyedWith, cookie)
	if f.destroyFn == nil {
		return service.DestroySessionResult{}
	}
	return f.destroyFn(ctx, cookie)
}

func (f *fakeAuthService) ResolveSession(ctx context.Context, cookie string) domainauth.SessionOutcome {
	if f.resolveFn == nil {
		return domainauth.SessionOutcome{State: domainauth.SessionNoArtifact}
	}
	return f.resolveFn(ctx, cookie)
}

func (f *fakeAuthService) Guard(ctx context.Context, cookie, path string) service.GuardResult {
	return f.guardFn(ctx, cookie, path)
}

// sessionsByCookie resolves cookie values to fixed outcomes.
func sessionsByCookie(m map[string]domainauth.SessionOutcome) func(context.Context, string) domainauth.SessionOutcome {
	return func(_ context.Context, cookie string) domainauth.SessionOutcome {
		if cookie == "" {
			return domainauth.SessionOutcome{State: domainauth.SessionNoArtifact}
		}
		if o, ok := m[cookie]; ok {
			return o
		}
		return domainauth.SessionOutcome{State: domainauth.SessionInvalid, Err: context.DeadlineExceeded}
	}
}

func validSession(uid string, role domainauth.Role) domainauth.SessionOutcome {
	return domainauth.SessionOutcome{
		State:  domainauth.SessionValid,
		Claims: domainauth.Claims{UID: uid, Email: uid + "@example.com", Role: role},
	}
}

type fakeAdminService struct {
	listFn       func(ctx context.Context) ([]service.UserSummary, error)
	createFn     func(ctx context.Context, in service.CreateUserInput) (service.CreatedUser, error)
	changeRoleFn func(ctx context.Context, in service.ChangeRoleInput) (domainauth.Role, error)

	calls int
}

func (f *fakeAdminService) ListUsers(ctx context.Context) ([]service.UserSummary, error) {
	f.calls++
	return f.listFn(ctx)
}

func (f *fakeAdminService) CreateUser(ctx context.Context, in service.CreateUserInput) (service.CreatedUser, error) {
	f.calls++
	return f.createFn(ctx, in)
}

func (f *fakeAdminService) ChangeRole(ctx context.Context, in service.ChangeRoleInput) (domainauth.Role, error) {
	f.calls++
	return f.changeRoleFn(ctx, in)
}
