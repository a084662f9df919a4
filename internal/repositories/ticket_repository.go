package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokora/internal/models/db_models"
)

type TicketRepositoryInterface interface {
	Create(ctx context.Context, ticket *db_models.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.Ticket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Ticket, error)
}

func NewTicketRepository(db *gorm.DB) TicketRepositoryInterface {
	return &TicketRepository{db: db}
}

type TicketRepository struct {
	db *gorm.DB
}

func (r *TicketRepository) Create(ctx context.Context, ticket *db_models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Ticket, error) {
	var ticket db_models.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Ticket, error) {
	var tickets []db_models.Ticket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
