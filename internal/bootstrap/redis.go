package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/portal-auth/config"
	redisadapter "github.com/target/portal-auth/internal/adapters/redis"
)

const redisPingTimeout = 5 * time.Second

// UserStoreConn is the Redis-backed local identity store and the client it owns.
type UserStoreConn struct {
	Store  *redisadapter.UserStore
	client redis.UniversalClient
}

// Close releases the underlying client.
func (c *UserStoreConn) Close() error { return c.client.Close() }

// OpenUserStore connects to Redis in the configured topology and returns the
// user store namespaced by cfg.KeyPrefix. The connection is verified with a
// ping and a read of the user index before it is handed out.
func OpenUserStore(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*UserStoreConn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, target, err := userStoreOptions(cfg)
	if err != nil {
		return nil, err
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = redisadapter.DefaultPrefix
	}

	client := redis.NewUniversalClient(opts)
	fail := func(err error) (*UserStoreConn, error) {
		if closeErr := client.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, err
	}

	checkCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(checkCtx).Err(); err != nil {
		return fail(fmt.Errorf("ping redis %s: %w", target, err))
	}
	store := redisadapter.NewUserStoreWithPrefix(client, prefix)
	users, err := store.Count(checkCtx)
	if err != nil {
		return fail(fmt.Errorf("read user index: %w", err))
	}

	logger.InfoContext(ctx, "redis user store ready", "target", target, "prefix", prefix, "users", users)
	return &UserStoreConn{Store: store, client: client}, nil
}

// userStoreOptions maps the Redis settings onto client options and a
// credential-free description of the target for logs.
func userStoreOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	switch {
	case cfg.UseCluster && cfg.UseSentinel:
		return nil, "", errors.New("redis: cluster and sentinel modes are mutually exclusive")
	case cfg.UseCluster:
		return clusterOptions(cfg)
	case cfg.UseSentinel:
		return sentinelOptions(cfg)
	default:
		return directOptions(cfg)
	}
}

func clusterOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	// Cluster has a single keyspace; tenants are separated by key prefix only.
	if cfg.DB != 0 {
		return nil, "", errors.New("redis cluster does not support REDIS_DB; use REDIS_KEY_PREFIX to separate deployments")
	}
	opts := &redis.UniversalOptions{
		Addrs:         trimmedAddrs(cfg.ClusterNodes),
		Password:      cfg.Password,
		IsClusterMode: true,
	}
	if len(opts.Addrs) == 0 {
		// Seed the cluster from the URI when no node list is given.
		seed, err := parseTarget(cfg.URI)
		if err != nil {
			return nil, "", err
		}
		if seed != nil {
			opts.Addrs = []string{seed.Addr}
			opts.Username = seed.Username
			opts.TLSConfig = seed.TLSConfig
			if seed.Password != "" {
				opts.Password = seed.Password
			}
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, "", errors.New("redis cluster configuration requires at least one address")
	}
	return opts, "cluster:" + strings.Join(opts.Addrs, ","), nil
}

func sentinelOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	addrs := trimmedAddrs(cfg.SentinelNodes)
	if len(addrs) == 0 {
		return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
	}
	if cfg.SentinelMasterName == "" {
		return nil, "", errors.New("redis sentinel configuration requires a master name")
	}
	return &redis.UniversalOptions{
		Addrs:            addrs,
		MasterName:       cfg.SentinelMasterName,
		Password:         cfg.Password,
		SentinelPassword: cfg.SentinelPassword,
		DB:               cfg.DB,
	}, "sentinel:" + cfg.SentinelMasterName, nil
}

func directOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, "", errors.New("redis direct configuration requires a URI")
	}
	parsed, err := parseTarget(cfg.URI)
	if err != nil {
		return nil, "", err
	}
	opts := &redis.UniversalOptions{
		Addrs:     []string{parsed.Addr},
		Username:  parsed.Username,
		Password:  parsed.Password,
		DB:        parsed.DB,
		TLSConfig: parsed.TLSConfig,
	}
	if opts.Password == "" {
		opts.Password = cfg.Password
	}
	// A database in the URL path wins over REDIS_DB.
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	return opts, parsed.Addr, nil
}

// parseTarget accepts a redis:// or rediss:// URL or a bare host:port. It
// returns nil for an empty value.
func parseTarget(raw string) (*redis.Options, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if !strings.HasPrefix(value, "redis://") && !strings.HasPrefix(value, "rediss://") {
		if strings.Contains(value, "@") {
			return nil, errors.New("redis credentials in the URI require the redis:// or rediss:// scheme")
		}
		return &redis.Options{Addr: value}, nil
	}
	opt, err := redis.ParseURL(value)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opt, nil
}

func trimmedAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
