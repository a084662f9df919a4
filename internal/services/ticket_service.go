package services

import (
	"context"

	"github.com/google/uuid"

	"tokora/internal/models/db_models"
	"tokora/internal/models/request_models"
	"tokora/internal/models/response_models"
	"tokora/internal/repositories"
	"tokora/pkg/utils"
)

type TicketServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req request_models.CreateTicketRequest) (*response_models.TicketResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]response_models.TicketResponse, error)
	Get(ctx context.Context, userID, ticketID uuid.UUID) (*response_models.TicketResponse, error)
}

type TicketService struct {
	ticketRepo repositories.TicketRepositoryInterface
}

func NewTicketService(ticketRepo repositories.TicketRepositoryInterface) TicketServiceInterface {
	return &TicketService{ticketRepo: ticketRepo}
}

func (s *TicketService) Create(ctx context.Context, userID uuid.UUID, req request_models.CreateTicketRequest) (*response_models.TicketResponse, error) {
	ticket := &db_models.Ticket{
		UserID:  userID,
		Subject: req.Subject,
		Message: req.Message,
		Status:  db_models.TicketStatusOpen,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toTicketResponse(ticket), nil
}

func (s *TicketService) List(ctx context.Context, userID uuid.UUID) ([]response_models.TicketResponse, error) {
	tickets, err := s.ticketRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, *toTicketResponse(&tickets[i]))
	}
	return out, nil
}

func (s *TicketService) Get(ctx context.Context, userID, ticketID uuid.UUID) (*response_models.TicketResponse, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if ticket == nil || ticket.UserID != userID {
		return nil, utils.ErrTicketNotFound
	}
	return toTicketResponse(ticket), nil
}

func toTicketResponse(ticket *db_models.Ticket) *response_models.TicketResponse {
	return &response_models.TicketResponse{
		ID:        ticket.ID.String(),
		Subject:   ticket.Subject,
		Message:   ticket.Message,
		Status:    string(ticket.Status),
		CreatedAt: ticket.CreatedAt,
	}
}
