// Package guard enforces that each interaction receives at most one primary
// response. Responders claim the interaction token before any callback call;
// only the first claim within the TTL is granted.
package guard

import (
	"context"
	"time"
)

// Guard grants one claim per token.
type Guard interface {
	// Claim returns true the first time token is claimed within the TTL.
	Claim(ctx context.Context, token string) (bool, error)

	// Release drops a claim so the token can be claimed again.
	Release(ctx context.Context, token string) error

	// Close releases backend resources.
	Close() error
}

// BackendType selects the guard implementation.
type BackendType string

const (
	BackendMemory BackendType = "memory"
	BackendRedis  BackendType = "redis"
	// BackendNone grants every claim.
	BackendNone BackendType = "none"
)

// DefaultTTL matches the lifetime of an interaction token.
const DefaultTTL = 15 * time.Minute

// Config configures the guard.
type Config struct {
	Backend BackendType
	TTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// EffectiveTTL is the claim lifetime the backends apply, DefaultTTL when unset.
func (c *Config) EffectiveTTL() time.Duration {
	if c.TTL <= 0 {
		return DefaultTTL
	}
	return c.TTL
}

// Nop grants every claim.
type Nop struct{}

// Claim implements Guard.
func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }

// Release implements Guard.
func (Nop) Release(context.Context, string) error { return nil }

// Close implements Guard.
func (Nop) Close() error { return nil }
