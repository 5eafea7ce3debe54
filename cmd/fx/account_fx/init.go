package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/repositories"
	"deseos/internal/services"
	mem "deseos/pkg/memcache"
	"deseos/pkg/utils"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo, controllers.NewAccountController)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	jwt *utils.JWTManager,
	tokens mem.TokenStore,
	mailService services.IMailService,
	log *zap.Logger,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, jwt, tokens, mailService, log.Named("accounts"))
}
