package events_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/config"
	"deseos/internal/infra"
	"deseos/internal/services"
)

var Module = fx.Provide(provideEventPublisher)

func provideEventPublisher(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) services.EventPublisher {
	writer := infra.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
	if writer == nil {
		log.Info("kafka not configured, domain events disabled")
		return infra.NewKafkaPublisher(nil)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return writer.Close() },
	})
	log.Info("publishing domain events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return infra.NewKafkaPublisher(writer)
}
