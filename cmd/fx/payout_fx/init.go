package payout_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/config"
	"deseos/internal/repositories"
	"deseos/internal/services"
)

var Module = fx.Provide(
	providePayoutRepo, providePayoutService, controllers.NewPayoutController)

func providePayoutRepo(db *gorm.DB) repositories.PayoutRepository {
	return repositories.NewPayoutRepository(db)
}

func providePayoutService(
	db *gorm.DB,
	payouts repositories.PayoutRepository,
	lists repositories.GiftListRepository,
	txns repositories.TransactionRepository,
	notifications repositories.NotificationRepository,
	cfg *config.Config,
	log *zap.Logger,
) services.PayoutServiceInterface {
	return services.NewPayoutService(db, payouts, lists, txns, notifications, cfg.DefaultCurrency, log.Named("payouts"))
}
