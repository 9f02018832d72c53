package guard

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"interactbot/pkg/config"
	"interactbot/pkg/logger"
)

// Module is the fx module for the response guard.
var Module = fx.Module("guard",
	fx.Provide(ProvideGuard),
)

// ProvideGuard creates the guard selected by cfg.Guard.
func ProvideGuard(lc fx.Lifecycle, log *logger.Logger, cfg *config.Config) (Guard, error) {
	guardConfig := &Config{
		Backend:       BackendType(cfg.Guard.Backend),
		TTL:           time.Duration(cfg.Guard.TTLMinutes) * time.Minute,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   cfg.Guard.Prefix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, err := New(ctx, log, guardConfig)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Response guard initialized",
				zap.String("backend", string(guardConfig.Backend)),
				zap.Duration("ttl", guardConfig.EffectiveTTL()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return g.Close()
		},
	})

	return g, nil
}
