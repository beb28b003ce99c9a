package memcache_fx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourbook/internal/config"
	mem "tourbook/pkg/memcache"
)

var Module = fx.Provide(provideResetTokenStore)

func provideResetTokenStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) mem.ResetTokenStore {
	if !cfg.Redis.Enabled {
		return mem.NewResetTokens()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
			}
			log.Info("redis reset token store connected", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return mem.NewRedisResetTokens(client)
}
