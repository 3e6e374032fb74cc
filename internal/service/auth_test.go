package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/mocks"
)

func newAuthService(t *testing.T) (*mocks.MockIdentityBackend, *AuthService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	backend := mocks.NewMockIdentityBackend(ctrl)
	svc := NewAuthService(AuthServiceOptions{
		Codec:   NewSessionCodec(SessionCodecOptions{Backend: backend}),
		Backend: backend,
	})
	return backend, svc
}

func TestAuthService_CreateSession_Success(t *testing.T) {
	backend, svc := newAuthService(t)
	ctx := context.Background()

	backend.EXPECT().VerifyIDToken(ctx, "tok").Return(domainauth.Claims{UID: "u1"}, nil)
	backend.EXPECT().CreateSessionCookie(ctx, "tok", DefaultSessionTTL).Return("cookie", nil)

	res, err := svc.CreateSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "cookie", res.Artifact.Value)
	assert.Equal(t, "u1", res.Claims.UID)
}

func TestAuthService_CreateSession_InvalidToken(t *testing.T) {
	backend, svc := newAuthService(t)
	backend.EXPECT().VerifyIDToken(gomock.Any(), "forged").
		Return(domainauth.Claims{}, apperrors.New(apperrors.ErrCodeInvalidToken, "bad signature"))

	res, err := svc.CreateSession(context.Background(), "forged")
	assert.Nil(t, res)
	assert.True(t, apperrors.IsInvalidToken(err))
}

func TestAuthService_DestroySession_NoCookieIsNoop(t *testing.T) {
	_, svc := newAuthService(t)

	res := svc.DestroySession(context.Background(), "")
	assert.Equal(t, DestroySessionResult{}, res)
}

func TestAuthService_DestroySession_RevokesValidSession(t *testing.T) {
	backend, svc := newAuthService(t)
	ctx := context.Background()

	backend.EXPECT().VerifySessionCookie(ctx, "cookie", true).Return(domainauth.Claims{UID: "u1"}, nil)
	backend.EXPECT().RevokeRefreshTokens(ctx, "u1").Return(nil)

	res := svc.DestroySession(ctx, "cookie")
	assert.Equal(t, DestroySessionResult{UID: "u1", Revoked: true}, res)
}

func TestAuthService_DestroySession_RevokeFailureIsSwallowed(t *testing.T) {
	backend, svc := newAuthService(t)
	ctx := context.Background()

	backend.EXPECT().VerifySessionCookie(ctx, "cookie", true).Return(domainauth.Claims{UID: "u1"}, nil)
	backend.EXPECT().RevokeRefreshTokens(ctx, "u1").Return(errors.New("backend down"))

	res := svc.DestroySession(ctx, "cookie")
	assert.Equal(t, "u1", res.UID)
	assert.False(t, res.Revoked)
}

func TestAuthService_DestroySession_InvalidCookieSkipsRevoke(t *testing.T) {
	backend, svc := newAuthService(t)
	backend.EXPECT().VerifySessionCookie(gomock.Any(), "stale", true).
		Return(domainauth.Claims{}, apperrors.New(apperrors.ErrCodeExpired, "expired"))

	res := svc.DestroySession(context.Background(), "stale")
	assert.Equal(t, DestroySessionResult{}, res)
}

func TestAuthService_Guard(t *testing.T) {
	tests := []struct {
		name      string
		cookie    string
		path      string
		claims    *domainauth.Claims
		verifyErr error
		action    domainauth.GuardAction
		location  string
		clear     bool
	}{
		{name: "anonymous page", path: "/", action: domainauth.GuardRedirect, location: "/login"},
		{name: "anonymous login", path: "/login", action: domainauth.GuardProceed},
		{
			name: "invalid cookie clears and redirects", cookie: "bad", path: "/",
			verifyErr: apperrors.New(apperrors.ErrCodeMalformedArtifact, "garbage"),
			action:    domainauth.GuardRedirect, location: "/login", clear: true,
		},
		{
			name: "invalid cookie on public proceeds anonymously", cookie: "bad", path: "/login",
			verifyErr: apperrors.New(apperrors.ErrCodeRevoked, "revoked"),
			action:    domainauth.GuardProceed, clear: true,
		},
		{
			name: "user on login goes home", cookie: "c", path: "/login",
			claims: &domainauth.Claims{UID: "u1"}, action: domainauth.GuardRedirect, location: "/",
		},
		{
			name: "user on admin goes home", cookie: "c", path: "/admin/users",
			claims: &domainauth.Claims{UID: "u1"}, action: domainauth.GuardRedirect, location: "/",
		},
		{
			name: "admin on admin proceeds", cookie: "c", path: "/admin",
			claims: &domainauth.Claims{UID: "a1", Role: domainauth.RoleAdmin}, action: domainauth.GuardProceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, svc := newAuthService(t)
			if tt.cookie != "" {
				var c domainauth.Claims
				if tt.claims != nil {
					c = *tt.claims
				}
				backend.EXPECT().VerifySessionCookie(gomock.Any(), tt.cookie, true).Return(c, tt.verifyErr)
			}

			res := svc.Guard(context.Background(), tt.cookie, tt.path)
			assert.Equal(t, tt.action, res.Decision.Action)
			assert.Equal(t, tt.location, res.Decision.Location)
			assert.Equal(t, tt.clear, res.ClearCookie)
			if tt.claims != nil {
				require.NotNil(t, res.Identity())
				assert.Equal(t, tt.claims.UID, res.Identity().UID)
				assert.NotEmpty(t, res.Identity().Role, "role defaults to user")
			} else {
				assert.Nil(t, res.Identity())
			}
		})
	}
}
