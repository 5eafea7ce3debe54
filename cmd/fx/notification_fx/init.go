package notification_fx

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
	provideNotificationRepo,
	provideNotificationService,
	asDispatcher,
	controllers.NewNotificationController,
)

func provideNotificationRepo(db *gorm.DB) repositories.NotificationRepository {
	return repositories.NewNotificationRepository(db)
}

func provideNotificationService(
	notifications repositories.NotificationRepository,
	accounts repositories.AccountRepository,
	lists repositories.GiftListRepository,
	gifts repositories.GiftRepository,
	mailer services.IMailService,
	events services.EventPublisher,
	cfg *config.Config,
	log *zap.Logger,
) services.NotificationServiceInterface {
	return services.NewNotificationService(notifications, accounts, lists, gifts, mailer, events, cfg.AppBaseURL, log.Named("notifications"))
}

func asDispatcher(s services.NotificationServiceInterface) services.NotificationDispatcher {
	return s
}
