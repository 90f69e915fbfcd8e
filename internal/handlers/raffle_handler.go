package handlers

import (
	"context"

	"raffled/internal/models"
	"raffled/internal/services"
	"raffled/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RaffleHandler struct {
	lifecycleService services.RaffleLifecycleService
}

func NewRaffleHandler(lifecycleService services.RaffleLifecycleService) *RaffleHandler {
	return &RaffleHandler{
		lifecycleService: lifecycleService,
	}
}

// CreateRaffle creates a new raffle in draft status
func (h *RaffleHandler) CreateRaffle(c *gin.Context) {
	var raffle models.Raffle
	if err := c.ShouldBindJSON(&raffle); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	raffle.CreatedBy = userID

	created, err := h.lifecycleService.CreateRaffle(c.Request.Context(), &raffle)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Raffle created successfully", created)
}

// GetRaffle retrieves raffle details
func (h *RaffleHandler) GetRaffle(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	raffle, err := h.lifecycleService.GetRaffle(c.Request.Context(), raffleID)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Raffle retrieved successfully", raffle)
}

// ListRaffles lists public raffles with pagination
func (h *RaffleHandler) ListRaffles(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	raffles, total, err := h.lifecycleService.ListRaffles(c.Request.Context(), true, params)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}

	utils.SuccessResponseWithMeta(c, "Raffles retrieved successfully", map[string]interface{}{
		"raffles": raffles,
	}, meta)
}

// ListAllRaffles lists every raffle including drafts, for admins
func (h *RaffleHandler) ListAllRaffles(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	raffles, total, err := h.lifecycleService.ListRaffles(c.Request.Context(), false, params)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}

	utils.SuccessResponseWithMeta(c, "Raffles retrieved successfully", map[string]interface{}{
		"raffles": raffles,
	}, meta)
}

// AddPrize adds a prize tier to a draft raffle
func (h *RaffleHandler) AddPrize(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	var prize models.RafflePrize
	if err := c.ShouldBindJSON(&prize); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	prize.RaffleID = raffleID

	created, err := h.lifecycleService.AddPrize(c.Request.Context(), &prize)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Prize added successfully", created)
}

// ActivateRaffle opens a draft raffle for entries
func (h *RaffleHandler) ActivateRaffle(c *gin.Context) {
	h.transition(c, h.lifecycleService.Activate, "Raffle activated successfully")
}

// PauseRaffle suspends entries on an active raffle
func (h *RaffleHandler) PauseRaffle(c *gin.Context) {
	h.transition(c, h.lifecycleService.Pause, "Raffle paused successfully")
}

// ResumeRaffle reopens a paused raffle
func (h *RaffleHandler) ResumeRaffle(c *gin.Context) {
	h.transition(c, h.lifecycleService.Resume, "Raffle resumed successfully")
}

// CancelRaffle cancels a raffle that has not been drawn
func (h *RaffleHandler) CancelRaffle(c *gin.Context) {
	h.transition(c, h.lifecycleService.Cancel, "Raffle cancelled successfully")
}

func (h *RaffleHandler) transition(c *gin.Context, op func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error), message string) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	raffle, err := op(c.Request.Context(), raffleID)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, message, raffle)
}

// ExecuteDraw runs the draw and returns the winner set
func (h *RaffleHandler) ExecuteDraw(c *gin.Context) {
	raffleID, err := objectIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raffle ID")
		return
	}

	result, err := h.lifecycleService.ExecuteDraw(c.Request.Context(), raffleID)
	if err != nil {
		utils.HandleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Draw completed successfully", result)
}
