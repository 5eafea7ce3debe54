package category_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/repositories"
	"deseos/internal/services"
)

var Module = fx.Provide(
	provideCategoryRepo, provideCategoryService, controllers.NewCategoryController)

func provideCategoryRepo(db *gorm.DB) repositories.CategoryRepository {
	return repositories.NewCategoryRepository(db)
}

func provideCategoryService(categories repositories.CategoryRepository, gifts repositories.GiftRepository, log *zap.Logger) services.CategoryServiceInterface {
	return services.NewCategoryService(categories, gifts, log.Named("categories"))
}
