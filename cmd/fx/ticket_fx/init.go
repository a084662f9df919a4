package ticket_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"tokora/internal/api/controllers"
	"tokora/internal/repositories"
	"tokora/internal/services"
)

var Module = fx.Provide(
	provideTicketRepo,
	provideTicketService,
	controllers.NewTicketController,
)

func provideTicketRepo(db *gorm.DB) repositories.TicketRepositoryInterface {
	return repositories.NewTicketRepository(db)
}

func provideTicketService(ticketRepo repositories.TicketRepositoryInterface) services.TicketServiceInterface {
	return services.NewTicketService(ticketRepo)
}
