// Package mocks provides gomock implementations of the ports used by the auth services.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockIdentityBackend(ctrl)
//	backend.EXPECT().VerifyIDToken(gomock.Any(), "tok").Return(claims, nil)
package mocks

// Generate mock for IdentityBackend interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_backend_mock.go github.com/target/portal-auth/internal/ports IdentityBackend

// Generate mock for UserStore interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_store_mock.go github.com/target/portal-auth/internal/ports UserStore
