package db_models

import "github.com/google/uuid"

type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
)

type Ticket struct {
	BaseModel
	UserID  uuid.UUID `gorm:"index"`
	Subject string
	Message string
	Status  TicketStatus `gorm:"index"`

	User User `gorm:"foreignKey:UserID"`
}
