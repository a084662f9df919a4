package billing_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokora/internal/api/controllers"
	"tokora/internal/config"
	"tokora/internal/gateway"
	"tokora/internal/pricing"
	"tokora/internal/repositories"
	"tokora/internal/services"
)

var Module = fx.Provide(
	provideCatalog,
	provideGateway,
	provideTransactionRepo,
	provideBillingService,
	providePaymentController,
)

func provideCatalog() *pricing.Catalog {
	return pricing.DefaultCatalog()
}

func provideGateway(cfg *config.Config, logger *zap.Logger) *gateway.Razorpay {
	return gateway.NewRazorpay(gateway.Config{
		KeyID:         cfg.RazorpayKeyID,
		KeySecret:     cfg.RazorpayKeySecret,
		WebhookSecret: cfg.RazorpayWebhookSecret,
	}, logger)
}

func provideTransactionRepo(db *gorm.DB) repositories.TransactionRepositoryInterface {
	return repositories.NewTransactionRepository(db)
}

func provideBillingService(
	txnRepo repositories.TransactionRepositoryInterface,
	catalog *pricing.Catalog,
	gw *gateway.Razorpay,
	invoices services.InvoiceServiceInterface,
	cfg *config.Config,
	logger *zap.Logger,
) services.BillingServiceInterface {
	return services.NewBillingService(txnRepo, catalog, gw, invoices, cfg.GatewayTimeout, logger)
}

func providePaymentController(
	billingService services.BillingServiceInterface,
	invoiceService services.InvoiceServiceInterface,
) *controllers.PaymentController {
	return controllers.NewPaymentController(billingService, invoiceService)
}
