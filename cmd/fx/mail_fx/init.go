package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/config"
	"deseos/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config, log *zap.Logger) services.IMailService {
	return services.NewMailService(cfg, log)
}
