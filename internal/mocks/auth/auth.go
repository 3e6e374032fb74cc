// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.UserStore = (*MemoryUserStore)(nil)
	_ ports.Clock     = (*FixedClock)(nil)
)

// MemoryUserStore is an in-memory user store for unit tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]ports.StoredUser
	byEmail map[string]string
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[string]ports.StoredUser),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryUserStore) Create(_ context.Context, u ports.StoredUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(u.Identity.Email)
	if _, exists := m.byEmail[email]; exists {
		return apperrors.New(apperrors.ErrCodeEmailExists, "email already exists")
	}
	m.users[u.Identity.UID] = copyUser(u)
	m.byEmail[email] = u.Identity.UID
	return nil
}

func (m *MemoryUserStore) Get(_ context.Context, uid string) (ports.StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[uid]
	if !ok {
		return ports.StoredUser{}, apperrors.NotFoundf("user %q not found", uid)
	}
	return copyUser(u), nil
}

func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (ports.StoredUser, error) {
	m.mu.RLock()
	uid, ok := m.byEmail[strings.ToLower(email)]
	m.mu.RUnlock()
	if !ok {
		return ports.StoredUser{}, apperrors.NotFound("user not found")
	}
	return m.Get(ctx, uid)
}

func (m *MemoryUserStore) List(_ context.Context, limit int) ([]ports.StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.StoredUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Identity.CreatedAt.Equal(out[j].Identity.CreatedAt) {
			return out[i].Identity.UID < out[j].Identity.UID
		}
		return out[i].Identity.CreatedAt.Before(out[j].Identity.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryUserStore) Patch(_ context.Context, uid string, p ports.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[uid]
	if !ok {
		return apperrors.NotFoundf("user %q not found", uid)
	}
	m.users[uid] = copyUser(p.Apply(u))
	return nil
}

func copyUser(u ports.StoredUser) ports.StoredUser {
	if u.Identity.CustomClaims != nil {
		claims := make(map[string]any, len(u.Identity.CustomClaims))
		for k, v := range u.Identity.CustomClaims {
			claims[k] = v
		}
		u.Identity.CustomClaims = claims
	}
	return u
}

// FixedClock is a manually advanced clock for tests.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock creates a FixedClock starting at t.
func NewFixedClock(t time.Time) *FixedClock { return &FixedClock{t: t} }

// Now returns the fixed time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set updates the fixed time.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
