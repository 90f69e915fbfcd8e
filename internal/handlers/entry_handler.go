package handlers

import (
	"raffled/internal/models"
	"raffled/internal/services"
	"raffled/internal/utils"

	"github.com/gin-gonic/gin"
)

type EntryHandler struct {
	entryService      services.EntryService
	validationService services.TicketValidationService
}

func NewEntryHandler(entryService services.EntryService, validationService services.TicketValidationService) *EntryHandler {
	return &EntryHandler{
		entryService:      entryService,
		validationService: validationService,
	}
}

// EnterWithCoupon issues tickets for a redeemed coupon
func (h *EntryHandler) EnterWithCoupon(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	var request services.CouponEntryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	request.RaffleID = raffleID
	request.UserID = userID

	result, err := h.entryService.EnterWithCoupon(c.Request.Context(), &request)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Tickets issued successfully", result)
}

// EnterWithPurchase issues tickets backed by a qualifying purchase
func (h *EntryHandler) EnterWithPurchase(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	var request services.PurchaseEntryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	request.RaffleID = raffleID
	request.UserID = userID

	result, err := h.entryService.EnterWithPurchase(c.Request.Context(), &request)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Tickets issued successfully", result)
}

// EnterWithPromotion issues promotional tickets for a campaign
func (h *EntryHandler) EnterWithPromotion(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	var request services.PromotionEntryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	request.RaffleID = raffleID
	request.UserID = userID

	result, err := h.entryService.EnterWithPromotion(c.Request.Context(), &request)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Tickets issued successfully", result)
}

// CanEnter answers whether the user could enter right now, without entering
func (h *EntryHandler) CanEnter(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	ticketCount := 1
	if raw := c.Query("ticket_count"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			ticketCount = parsed
		}
	}

	sourceType := models.TicketSource(c.DefaultQuery("source_type", string(models.SourcePurchase)))
	if !models.IsValidTicketSource(sourceType) {
		utils.BadRequestResponse(c, "Invalid source type")
		return
	}

	result, err := h.validationService.CanEnter(c.Request.Context(), raffleID, userID, ticketCount, sourceType, c.Query("source_ref"))
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Entry check completed", result)
}

// GetMyTickets lists the caller's tickets in a raffle
func (h *EntryHandler) GetMyTickets(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	tickets, total, err := h.entryService.GetUserTickets(c.Request.Context(), raffleID, userID, params)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}

	utils.SuccessResponseWithMeta(c, "Tickets retrieved successfully", map[string]interface{}{
		"tickets": tickets,
	}, meta)
}
