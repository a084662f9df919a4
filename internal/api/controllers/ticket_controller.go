package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tokora/internal/models/request_models"
	"tokora/internal/services"
	"tokora/pkg/utils"
)

type TicketController struct {
	ticketService services.TicketServiceInterface
}

func NewTicketController(ticketService services.TicketServiceInterface) *TicketController {
	return &TicketController{ticketService: ticketService}
}

func (t *TicketController) Create(c *gin.Context) {
	var request request_models.CreateTicketRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	ticket, err := t.ticketService.Create(c.Request.Context(), userID, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, ticket, "Ticket created successfully")
}

func (t *TicketController) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	tickets, err := t.ticketService.List(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tickets, "Tickets listed successfully")
}

func (t *TicketController) Get(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	ticket, err := t.ticketService.Get(c.Request.Context(), userID, ticketID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, ticket, "Ticket fetched successfully")
}
