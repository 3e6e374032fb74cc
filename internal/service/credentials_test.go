package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/mocks"
	"github.com/target/portal-auth/internal/ports"
)

func TestCredentialProvider_InitializesOnceUnderConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockIdentityBackend(ctrl)
	backend.EXPECT().GetUser(gomock.Any(), "u1").Return(domainauth.Identity{UID: "u1"}, nil).Times(16)

	var calls atomic.Int32
	p := NewCredentialProvider(CredentialProviderOptions{
		Factory: func(context.Context) (ports.IdentityBackend, error) {
			calls.Add(1)
			return backend, nil
		},
	})
	assert.Equal(t, int32(0), calls.Load(), "factory must not run at construction")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := p.GetUser(context.Background(), "u1")
			assert.NoError(t, err)
			assert.Equal(t, "u1", id.UID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCredentialProvider_MissingFactoryFailsEveryOperation(t *testing.T) {
	p := NewCredentialProvider(CredentialProviderOptions{})
	ctx := context.Background()

	_, err := p.VerifyIDToken(ctx, "tok")
	assert.True(t, apperrors.IsConfiguration(err))
	_, err = p.CreateSessionCookie(ctx, "tok", DefaultSessionTTL)
	assert.True(t, apperrors.IsConfiguration(err))
	_, err = p.VerifySessionCookie(ctx, "c", true)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.True(t, apperrors.IsConfiguration(p.RevokeRefreshTokens(ctx, "u")))
	_, err = p.ListUsers(ctx, 10)
	assert.True(t, apperrors.IsConfiguration(err))
	_, err = p.CreateUser(ctx, domainauth.NewUser{Email: "a@b.com", Password: "secret1"})
	assert.True(t, apperrors.IsConfiguration(err))
	assert.True(t, apperrors.IsConfiguration(p.SetCustomUserClaims(ctx, "u", nil)))
	_, err = p.GetUser(ctx, "u")
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestCredentialProvider_FactoryErrorIsCached(t *testing.T) {
	var calls atomic.Int32
	cause := errors.New("parse credentials: unexpected end of JSON input")
	p := NewCredentialProvider(CredentialProviderOptions{
		Factory: func(context.Context) (ports.IdentityBackend, error) {
			calls.Add(1)
			return nil, cause
		},
	})

	for range 3 {
		_, err := p.Backend()
		require.Error(t, err)
		assert.True(t, apperrors.IsConfiguration(err))
		assert.ErrorIs(t, err, cause)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestCredentialProvider_NilBackendIsConfigurationError(t *testing.T) {
	p := NewCredentialProvider(CredentialProviderOptions{
		Factory: func(context.Context) (ports.IdentityBackend, error) { return nil, nil },
	})
	_, err := p.Backend()
	assert.True(t, apperrors.IsConfiguration(err))
	assert.True(t, apperrors.IsConfiguration(p.Ready()))
}

func TestCredentialProvider_Delegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockIdentityBackend(ctrl)
	p := NewCredentialProvider(CredentialProviderOptions{
		Factory: func(context.Context) (ports.IdentityBackend, error) { return backend, nil },
	})
	ctx := context.Background()

	backend.EXPECT().VerifySessionCookie(ctx, "cookie", true).Return(domainauth.Claims{UID: "u1"}, nil)
	backend.EXPECT().RevokeRefreshTokens(ctx, "u1").Return(nil)
	backend.EXPECT().ListUsers(ctx, 1000).Return([]domainauth.Identity{{UID: "u1"}}, nil)

	claims, err := p.VerifySessionCookie(ctx, "cookie", true)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	require.NoError(t, p.RevokeRefreshTokens(ctx, "u1"))
	users, err := p.ListUsers(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
