// Package redis provides Redis-based adapters for portal-auth.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	apperrors "github.com/target/portal-auth/internal/errors"
	"github.com/target/portal-auth/internal/ports"
)

// DefaultPrefix namespaces every key written by UserStore when no prefix is configured.
const DefaultPrefix = "idp:"

// UserStore persists local identities in Redis.
//
// Layout:
//
//	<prefix>user:<uid>     JSON record
//	<prefix>email:<email>  uid, claimed with SETNX so emails stay unique
//	<prefix>users          sorted set of uids scored by creation time
type UserStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.UserStore = (*UserStore)(nil)

// NewUserStoreWithPrefix creates a Redis user store with a custom key prefix.
func NewUserStoreWithPrefix(client redis.UniversalClient, prefix string) *UserStore {
	return &UserStore{client: client, prefix: prefix}
}

type userRecord struct {
	UID           string         `json:"uid"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"emailVerified"`
	Disabled      bool           `json:"disabled"`
	CustomClaims  map[string]any `json:"customClaims,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastSignInAt  time.Time      `json:"lastSignInAt"`
	PasswordHash  []byte         `json:"passwordHash"`
	ValidAfter    time.Time      `json:"validAfter"`
}

func toRecord(u ports.StoredUser) userRecord {
	return userRecord{
		UID:           u.Identity.UID,
		Email:         u.Identity.Email,
		EmailVerified: u.Identity.EmailVerified,
		Disabled:      u.Identity.Disabled,
		CustomClaims:  u.Identity.CustomClaims,
		CreatedAt:     u.Identity.CreatedAt,
		LastSignInAt:  u.Identity.LastSignInAt,
		PasswordHash:  u.PasswordHash,
		ValidAfter:    u.ValidAfter,
	}
}

func (r userRecord) toStored() ports.StoredUser {
	return ports.StoredUser{
		Identity: domainauth.Identity{
			UID:           r.UID,
			Email:         r.Email,
			EmailVerified: r.EmailVerified,
			Disabled:      r.Disabled,
			CustomClaims:  r.CustomClaims,
			CreatedAt:     r.CreatedAt,
			LastSignInAt:  r.LastSignInAt,
		},
		PasswordHash: r.PasswordHash,
		ValidAfter:   r.ValidAfter,
	}
}

func (s *UserStore) userKey(uid string) string { return s.prefix + "user:" + uid }

func (s *UserStore) emailKey(email string) string {
	return s.prefix + "email:" + strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) indexKey() string { return s.prefix + "users" }

func (s *UserStore) Create(ctx context.Context, u ports.StoredUser) error {
	if u.Identity.UID == "" {
		return apperrors.ValidationField("uid", "uid cannot be empty")
	}
	data, err := json.Marshal(toRecord(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	emailKey := s.emailKey(u.Identity.Email)
	claimed, err := s.client.SetNX(ctx, emailKey, u.Identity.UID, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx email: %w", err)
	}
	if !claimed {
		return apperrors.Newf(apperrors.ErrCodeEmailExists, "email %q already in use", u.Identity.Email)
	}

	created, err := s.client.SetNX(ctx, s.userKey(u.Identity.UID), data, 0).Result()
	if err != nil || !created {
		// Release the email claim so a retry can succeed.
		if delErr := s.client.Del(ctx, emailKey).Err(); delErr != nil {
			return fmt.Errorf("release email claim: %w", delErr)
		}
		if err != nil {
			return fmt.Errorf("redis setnx user: %w", err)
		}
		return apperrors.Newf(apperrors.ErrCodeValidation, "uid %q already exists", u.Identity.UID)
	}

	score := float64(u.Identity.CreatedAt.UnixNano())
	if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: score, Member: u.Identity.UID}).Err(); err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, uid string) (ports.StoredUser, error) {
	if uid == "" {
		return ports.StoredUser{}, apperrors.NotFound("user not found")
	}
	data, err := s.client.Get(ctx, s.userKey(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.StoredUser{}, apperrors.NotFoundf("user %q not found", uid)
		}
		return ports.StoredUser{}, fmt.Errorf("redis get: %w", err)
	}
	return decodeUser(data)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (ports.StoredUser, error) {
	uid, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.StoredUser{}, apperrors.NotFound("user not found")
		}
		return ports.StoredUser{}, fmt.Errorf("redis get email: %w", err)
	}
	return s.Get(ctx, uid)
}

func (s *UserStore) List(ctx context.Context, limit int) ([]ports.StoredUser, error) {
	if limit <= 0 {
		return []ports.StoredUser{}, nil
	}
	uids, err := s.client.ZRange(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrange: %w", err)
	}
	if len(uids) == 0 {
		return []ports.StoredUser{}, nil
	}

	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = s.userKey(uid)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]ports.StoredUser, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skip it.
			continue
		}
		u, decodeErr := decodeUser([]byte(raw))
		if decodeErr != nil {
			return nil, decodeErr
		}
		out = append(out, u)
	}
	return out, nil
}

// Count returns the number of users in the index.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcard: %w", err)
	}
	return n, nil
}

// maxPatchAttempts bounds optimistic retries when another writer touches the
// record between WATCH and EXEC.
const maxPatchAttempts = 8

// Patch applies p with an optimistic WATCH/MULTI check-and-set so concurrent
// patches of different fields are never lost.
func (s *UserStore) Patch(ctx context.Context, uid string, p ports.UserPatch) error {
	key := s.userKey(uid)
	apply := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperrors.NotFoundf("user %q not found", uid)
			}
			return fmt.Errorf("redis get: %w", err)
		}
		u, err := decodeUser(data)
		if err != nil {
			return err
		}
		next, err := json.Marshal(toRecord(p.Apply(u)))
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetXX(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxPatchAttempts; attempt++ {
		err := s.client.Watch(ctx, apply, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !apperrors.IsNotFound(err) {
			return fmt.Errorf("redis patch: %w", err)
		}
		return err
	}
	return apperrors.Newf(apperrors.ErrCodeBackend, "user %q changed concurrently", uid)
}

func decodeUser(data []byte) (ports.StoredUser, error) {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ports.StoredUser{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return rec.toStored(), nil
}
