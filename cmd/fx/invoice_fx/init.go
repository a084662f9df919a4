package invoice_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tokora/internal/config"
	"tokora/internal/repositories"
	"tokora/internal/services"
)

var Module = fx.Provide(provideInvoiceService)

func provideInvoiceService(
	cfg *config.Config,
	txnRepo repositories.TransactionRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) services.InvoiceServiceInterface {
	return services.NewInvoiceService(cfg.InvoiceDir, txnRepo, userRepo, logger)
}
