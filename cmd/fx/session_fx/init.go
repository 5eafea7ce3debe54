package session_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/api/controllers"
	"deseos/internal/services"
	mem "deseos/pkg/memcache"
)

var Module = fx.Provide(
	provideSessionService, controllers.NewSessionController)

func provideSessionService(tokens mem.TokenStore, log *zap.Logger) services.SessionServiceInterface {
	return services.NewSessionService(tokens, log.Named("session"))
}
