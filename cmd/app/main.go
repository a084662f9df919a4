package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokora/cmd/fx/account_fx"
	"tokora/cmd/fx/billing_fx"
	"tokora/cmd/fx/db_fx"
	"tokora/cmd/fx/invoice_fx"
	"tokora/cmd/fx/ticket_fx"
	"tokora/internal/api/controllers"
	"tokora/internal/config"
	"tokora/internal/infra"
	"tokora/pkg/logger"
	"tokora/pkg/middleware"
)

func main() {
	app := fx.New(
		fx.Provide(config.Load),
		fx.Provide(logger.New),

		db_fx.Module,
		account_fx.Module,
		invoice_fx.Module,
		billing_fx.Module,
		ticket_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config, db *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting HTTP server", zap.String("port", cfg.Port))
				if err := engine.Run(":" + cfg.Port); err != nil {
					log.Fatal("Failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping HTTP server")
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	paymentController *controllers.PaymentController,
	ticketController *controllers.TicketController,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, accountController, paymentController, ticketController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	paymentController *controllers.PaymentController,
	ticketController *controllers.TicketController) {

	auth := r.Group("/auth")
	auth.POST("/register", accountController.Register)
	auth.POST("/login", accountController.Login)

	accounts := r.Group("/accounts", middleware.JWTAuthMiddleware())
	accounts.GET("/me", accountController.Me)

	payments := r.Group("/payments")
	payments.GET("/packages", paymentController.GetPackages)
	// Provider-initiated; authenticated by its HMAC signature, not a user token
	payments.POST("/webhook", paymentController.HandleWebhook)

	authedPayments := payments.Group("", middleware.JWTAuthMiddleware())
	authedPayments.POST("/orders", paymentController.CreateOrder)
	authedPayments.POST("/verify", paymentController.VerifyPayment)
	authedPayments.GET("/history", paymentController.ListTransactions)
	authedPayments.GET("/invoice/:txnId", paymentController.DownloadInvoice)

	tickets := r.Group("/tickets", middleware.JWTAuthMiddleware())
	tickets.POST("", ticketController.Create)
	tickets.GET("", ticketController.List)
	tickets.GET("/:id", ticketController.Get)
}
