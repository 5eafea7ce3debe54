package tracing_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/config"
	"deseos/internal/infra"
)

const ServiceName = "deseos"

var Module = fx.Invoke(initTracing)

func initTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) error {
	tp, err := infra.InitTracerProvider(ServiceName, cfg.JaegerEndpoint, log)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return tp.Shutdown(ctx) },
	})
	return nil
}
