package handlers

import (
	"raffled/internal/services"
	"raffled/internal/utils"

	"github.com/gin-gonic/gin"
)

type WinnerHandler struct {
	claimService        services.WinnerClaimService
	notificationService services.NotificationService
}

func NewWinnerHandler(claimService services.WinnerClaimService, notificationService services.NotificationService) *WinnerHandler {
	return &WinnerHandler{
		claimService:        claimService,
		notificationService: notificationService,
	}
}

// GetRaffleWinners lists the winners of a completed raffle
func (h *WinnerHandler) GetRaffleWinners(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	winners, err := h.claimService.GetRaffleWinners(c.Request.Context(), raffleID)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Winners retrieved successfully", map[string]interface{}{
		"winners": winners,
	})
}

type verifyWinnerRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyWinner verifies a winner's identity from their claim code
func (h *WinnerHandler) VerifyWinner(c *gin.Context) {
	var request verifyWinnerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	verifiedBy, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	winner, err := h.claimService.VerifyWinner(c.Request.Context(), request.Code, verifiedBy)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Winner verified successfully", winner)
}

// ClaimPrize lets the winning user claim their prize
func (h *WinnerHandler) ClaimPrize(c *gin.Context) {
	winnerID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid winner ID")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request services.ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	request.WinnerID = winnerID
	request.UserID = userID

	winner, _, err := h.claimService.Claim(c.Request.Context(), &request)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Prize claimed successfully", winner)
}

type markDeliveredRequest struct {
	DeliveryInfo string `json:"delivery_info,omitempty"`
}

// MarkDelivered records physical prize handover, for admins
func (h *WinnerHandler) MarkDelivered(c *gin.Context) {
	winnerID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid winner ID")
		return
	}

	var request markDeliveredRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	winner, err := h.claimService.MarkDelivered(c.Request.Context(), winnerID, request.DeliveryInfo)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Prize marked delivered", winner)
}

// NotifyWinner resends the win notification, for admins. A no-op when the
// winner has already been notified.
func (h *WinnerHandler) NotifyWinner(c *gin.Context) {
	winnerID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid winner ID")
		return
	}

	winner, err := h.notificationService.NotifyWinnerByID(c.Request.Context(), winnerID)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Winner notified", winner)
}

// ExpireUnclaimed runs the claim-deadline sweep on demand, for admins
func (h *WinnerHandler) ExpireUnclaimed(c *gin.Context) {
	count, err := h.claimService.ExpireUnclaimed(c.Request.Context())
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Expiry sweep completed", map[string]interface{}{
		"expired": count,
	})
}
