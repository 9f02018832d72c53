package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"interactbot/pkg/logger"
)

// claimClient is the subset of *redis.Client the guard needs.
type claimClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisGuard shares claims between replicas through SETNX.
type RedisGuard struct {
	log    *logger.Logger
	client claimClient
	prefix string
	ttl    time.Duration
}

// RedisGuardConfig configures the Redis guard.
type RedisGuardConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisGuard connects to Redis and returns a guard.
func NewRedisGuard(ctx context.Context, log *logger.Logger, cfg *RedisGuardConfig) (*RedisGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	log.Info("Connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.String("prefix", cfg.Prefix))

	return newRedisGuard(log, client, cfg.Prefix, cfg.TTL), nil
}

func newRedisGuard(log *logger.Logger, client claimClient, prefix string, ttl time.Duration) *RedisGuard {
	if prefix == "" {
		prefix = "interactbot:claim:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGuard{log: log, client: client, prefix: prefix, ttl: ttl}
}

// key hashes the token so raw tokens never land in Redis.
func (g *RedisGuard) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return g.prefix + hex.EncodeToString(sum[:])
}

// Claim implements Guard.
func (g *RedisGuard) Claim(ctx context.Context, token string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(token), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release implements Guard.
func (g *RedisGuard) Release(ctx context.Context, token string) error {
	if err := g.client.Del(ctx, g.key(token)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close implements Guard.
func (g *RedisGuard) Close() error {
	return g.client.Close()
}
