package handlers

import (
	"raffled/internal/services"
	"raffled/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TicketHandler struct {
	entryService services.EntryService
}

func NewTicketHandler(entryService services.EntryService) *TicketHandler {
	return &TicketHandler{
		entryService: entryService,
	}
}

type verifyTicketRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyTicket confirms a pending ticket from its verification code. Staff
// verify on behalf of users, so the verifier is recorded when present.
func (h *TicketHandler) VerifyTicket(c *gin.Context) {
	var request verifyTicketRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	var verifiedBy *primitive.ObjectID
	if userID, ok := currentUserID(c); ok {
		verifiedBy = &userID
	}

	ticket, err := h.entryService.VerifyTicket(c.Request.Context(), request.Code, verifiedBy)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ticket verified successfully", ticket)
}

type cancelTicketRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelTicket voids one of the caller's own tickets
func (h *TicketHandler) CancelTicket(c *gin.Context) {
	ticketID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ticket ID")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request cancelTicketRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	ticket, _, err := h.entryService.CancelTicket(c.Request.Context(), ticketID, userID, request.Reason)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ticket cancelled successfully", ticket)
}
