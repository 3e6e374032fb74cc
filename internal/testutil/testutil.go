// Package testutil provides shared helpers for tests that need live infrastructure.
package testutil

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

const dialTimeout = 2 * time.Second

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// GetTestRedisAddr returns the Redis address to test against and whether it answered a PING.
// REDIS_ADDR wins; otherwise the compose service name and localhost are tried.
func GetTestRedisAddr(t TestingTB) (string, bool) {
	t.Helper()

	candidates := []string{"redis:6379", "localhost:6379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}
	for _, addr := range candidates {
		if ping(addr) == nil {
			return addr, true
		}
	}
	t.Logf("Redis not available at %s", strings.Join(candidates, ", "))
	return candidates[len(candidates)-1], false
}

func ping(addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}

// SetupTestRedis returns a client on TEST_REDIS_DB (default 0) that is closed
// when the test ends. The test is skipped when Redis is unreachable unless
// TEST_REQUIRE_REDIS is set. Tests share the database; isolate keys with
// UserKeyPrefix rather than flushing.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr, ok := GetTestRedisAddr(t)
	if !ok {
		if requireRedis() {
			t.Fatal("Redis not available for testing")
		}
		t.Skip("Redis not available for testing")
	}

	db := 0
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			t.Fatalf("invalid TEST_REDIS_DB=%q", v)
		}
		db = n
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	})
	return client
}

// UserKeyPrefix returns a user-store key prefix unique to this test and
// deletes every key under it when the test ends.
func UserKeyPrefix(t TestingTB, client redis.UniversalClient) string {
	t.Helper()

	prefix := "test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()

		iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			t.Logf("warning: failed to scan %s: %v", prefix, err)
			return
		}
		if len(keys) == 0 {
			return
		}
		if err := client.Del(ctx, keys...).Err(); err != nil {
			t.Logf("warning: failed to delete %s keys: %v", prefix, err)
		}
	})
	return prefix
}
