package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

func storedUser(uid, email string, created time.Time) ports.StoredUser {
	return ports.StoredUser{Identity: domainauth.Identity{UID: uid, Email: email, CreatedAt: created}}
}

func TestMemoryUserStore_CreateGet(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, storedUser("u1", "A@example.com", now)))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "A@example.com", got.Identity.Email)

	byEmail, err := store.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.Identity.UID)

	err = store.Create(ctx, storedUser("u2", "a@EXAMPLE.com", now))
	assert.Equal(t, apperrors.ErrCodeEmailExists, apperrors.GetCode(err))

	_, err = store.Get(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryUserStore_ListOrderAndLimit(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, storedUser("c", "c@example.com", base.Add(2*time.Minute))))
	require.NoError(t, store.Create(ctx, storedUser("a", "a@example.com", base)))
	require.NoError(t, store.Create(ctx, storedUser("b", "b@example.com", base.Add(time.Minute))))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Identity.UID, all[1].Identity.UID, all[2].Identity.UID})

	two, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestMemoryUserStore_PatchIsolatesClaims(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	u := storedUser("u1", "u@example.com", time.Now())
	u.Identity.CustomClaims = map[string]any{"role": "user"}
	require.NoError(t, store.Create(ctx, u))

	u.Identity.CustomClaims["role"] = "admin"
	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "user", got.Identity.CustomClaims["role"], "caller mutation must not leak into the store")

	claims := map[string]any{"role": "admin"}
	require.NoError(t, store.Patch(ctx, "u1", ports.UserPatch{CustomClaims: claims}))
	claims["role"] = "user"
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Identity.CustomClaims["role"])

	disabled := true
	assert.True(t, apperrors.IsNotFound(store.Patch(ctx, "nope", ports.UserPatch{Disabled: &disabled})))
}

func TestMemoryUserStore_PatchLeavesOtherFields(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	u := storedUser("u1", "u@example.com", created)
	u.Identity.CustomClaims = map[string]any{"role": "admin"}
	require.NoError(t, store.Create(ctx, u))

	revokedAt := created.Add(time.Hour)
	require.NoError(t, store.Patch(ctx, "u1", ports.UserPatch{ValidAfter: &revokedAt}))
	stale := created
	signIn := created.Add(2 * time.Hour)
	require.NoError(t, store.Patch(ctx, "u1", ports.UserPatch{ValidAfter: &stale, LastSignInAt: &signIn}))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.ValidAfter.Equal(revokedAt))
	assert.True(t, got.Identity.LastSignInAt.Equal(signIn))
	assert.Equal(t, "admin", got.Identity.CustomClaims["role"])
	assert.False(t, got.Identity.Disabled)
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	assert.Equal(t, start, c.Now())
	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())
}
