package guard

import (
	"context"
	"fmt"

	"interactbot/pkg/logger"
)

// New creates a guard based on configuration.
func New(ctx context.Context, log *logger.Logger, cfg *Config) (Guard, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryGuard(cfg.TTL), nil

	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required")
		}
		g, err := NewRedisGuard(ctx, log, &RedisGuardConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.TTL,
		})
		if err != nil {
			return nil, err
		}
		return g, nil

	case BackendNone:
		return Nop{}, nil

	default:
		return nil, fmt.Errorf("unknown guard backend: %s", cfg.Backend)
	}
}
