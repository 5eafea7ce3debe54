package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/config"
	"deseos/internal/repositories"
	"deseos/internal/services"
	"deseos/internal/services/gateway"
)

var Module = fx.Provide(
	provideWebhookEventRepo, providePaymentService, providePaymentController,
)

func provideWebhookEventRepo(db *gorm.DB) repositories.WebhookEventRepository {
	return repositories.NewWebhookEventRepository(db)
}

type paymentDeps struct {
	fx.In

	DB       *gorm.DB
	Txns     repositories.TransactionRepository
	Gifts    repositories.GiftRepository
	Lists    repositories.GiftListRepository
	Webhooks repositories.WebhookEventRepository
	Accounts repositories.AccountRepository
	Gateways *gateway.Registry
	Sessions services.SessionServiceInterface
	Notifier services.NotificationDispatcher
	Config   *config.Config
	Log      *zap.Logger
}

func providePaymentService(d paymentDeps) services.PaymentService {
	return services.NewPaymentService(
		d.DB, d.Txns, d.Gifts, d.Lists, d.Webhooks, d.Accounts,
		d.Gateways, d.Sessions, d.Notifier, d.Config, d.Log.Named("payments"),
	)
}

func providePaymentController(paymentService services.PaymentService, log *zap.Logger) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService, log.Named("payments"))
}
