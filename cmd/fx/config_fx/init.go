package config_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/config"
	"deseos/internal/infra"
	"deseos/pkg/utils"
)

var Module = fx.Provide(
	config.Load, provideLogger, provideJWTManager)

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := infra.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

func provideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
}
