package cart_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/repositories"
	"deseos/internal/services"
)

var Module = fx.Provide(
	provideCartRepo, provideCartService, controllers.NewCartController)

func provideCartRepo(db *gorm.DB) repositories.CartRepository {
	return repositories.NewCartRepository(db)
}

func provideCartService(cart repositories.CartRepository, gifts repositories.GiftRepository, payments services.PaymentService, log *zap.Logger) services.CartServiceInterface {
	return services.NewCartService(cart, gifts, payments, log.Named("cart"))
}
