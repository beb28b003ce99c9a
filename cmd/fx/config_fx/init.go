package config_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourbook/internal/config"
	"tourbook/internal/infra"
)

var Module = fx.Provide(
	config.Load,
	provideLogger)

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := infra.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}
