package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokora/internal/api/controllers"
	"tokora/internal/repositories"
	"tokora/internal/services"
)

var Module = fx.Provide(
	provideUserRepo,
	provideAccountService,
	controllers.NewAccountController,
)

func provideUserRepo(db *gorm.DB) repositories.UserRepositoryInterface {
	return repositories.NewUserRepository(db)
}

func provideAccountService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) services.AccountServiceInterface {
	return services.NewAccountService(userRepo, logger)
}
