package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/target/portal-auth/internal/adapters/localidp"
	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	mocks "github.com/target/portal-auth/internal/mocks/auth"
	"github.com/target/portal-auth/internal/ports"
)

type cliHarness struct {
	idp    *localidp.Backend
	opened int
	closed int
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	idp, err := localidp.NewBackend(localidp.Config{
		SigningKey: []byte("cli-test-signing-key-0123456789abcdef"),
		Store:      mocks.NewMemoryUserStore(),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return &cliHarness{idp: idp}
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	deps := &cliDeps{
		open: func(context.Context) (ports.IdentityBackend, func(), error) {
			h.opened++
			return h.idp, func() { h.closed++ }, nil
		},
		stdin:  strings.NewReader(stdin),
		stdout: &out,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	cmd := newRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUsersCreate(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "users", "create", "--email", "root@example.com", "--password", "rootpass1", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "with role admin")

	users, err := h.idp.ListUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domainauth.RoleAdmin, users[0].Role())
	assert.Equal(t, h.opened, h.closed)
}

func TestUsersCreate_PasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "piped-secret\n", "users", "create", "--email", "a@example.com", "--stdin")
	require.NoError(t, err)

	_, id, err := h.idp.SignIn(context.Background(), "a@example.com", "piped-secret")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleUser, id.Role())
}

func TestUsersCreate_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "pw\n", "users", "create", "--email", "a@example.com", "--stdin", "--password", "x")
	assert.ErrorContains(t, err, "mutually exclusive")
	assert.Zero(t, h.opened)

	_, err = h.run(t, "", "users", "create", "--password", "secret123")
	assert.Error(t, err, "email flag is required")

	_, err = h.run(t, "", "users", "create", "--email", "a@example.com", "--password", "secret123", "--role", "root")
	assert.True(t, apperrors.IsValidation(err))

	_, err = h.run(t, "", "users", "create", "--email", "a@example.com", "--password", "123")
	assert.Equal(t, apperrors.ErrCodeWeakPassword, apperrors.GetCode(err))
}

func TestUsersList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.idp.SeedAdmin(ctx, "root@example.com", "rootpass1")
	require.NoError(t, err)
	_, _, err = h.idp.SignUp(ctx, "b@example.com", "secret123")
	require.NoError(t, err)

	out, err := h.run(t, "", "users", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "UID"))
	assert.Contains(t, out, "root@example.com")
	assert.Contains(t, out, "admin")

	out, err = h.run(t, "", "users", "list", "--limit", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	_, err = h.run(t, "", "users", "list", "--limit", "0")
	assert.ErrorContains(t, err, "--limit")
}

func TestUsersSetRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, id, err := h.idp.SignUp(ctx, "b@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, h.idp.SetCustomUserClaims(ctx, id.UID, map[string]any{"team": "blue"}))

	out, err := h.run(t, "", "users", "set-role", id.UID, "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "now has role admin")

	got, err := h.idp.GetUser(ctx, id.UID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"team": "blue", "role": "admin"}, got.CustomClaims)

	_, err = h.run(t, "", "users", "set-role", "missing", "admin")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = h.run(t, "", "users", "set-role", id.UID)
	assert.Error(t, err)
}

func TestUsersRevoke(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tok, id, err := h.idp.SignUp(ctx, "b@example.com", "secret123")
	require.NoError(t, err)

	out, err := h.run(t, "", "users", "revoke", id.UID)
	require.NoError(t, err)
	assert.Contains(t, out, "revoked sessions for "+id.UID)

	_, err = h.idp.CreateSessionCookie(ctx, tok, time.Hour)
	assert.True(t, apperrors.IsRevoked(err))

	_, err = h.run(t, "", "users", "revoke", "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(strings.NewReader("secret\r\nignored"))
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)
}
