package gift_list_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/repositories"
	"deseos/internal/services"
)

var Module = fx.Provide(
	provideGiftListRepo, provideGiftRepo, provideTransactionRepo, provideGiftListService,
	controllers.NewGiftListController,
)

func provideGiftListRepo(db *gorm.DB) repositories.GiftListRepository {
	return repositories.NewGiftListRepository(db)
}

func provideGiftRepo(db *gorm.DB) repositories.GiftRepository {
	return repositories.NewGiftRepository(db)
}

func provideTransactionRepo(db *gorm.DB) repositories.TransactionRepository {
	return repositories.NewTransactionRepository(db)
}

func provideGiftListService(
	lists repositories.GiftListRepository,
	gifts repositories.GiftRepository,
	categories repositories.CategoryRepository,
	txns repositories.TransactionRepository,
	log *zap.Logger,
) services.GiftListServiceInterface {
	return services.NewGiftListService(lists, gifts, categories, txns, log.Named("lists"))
}
