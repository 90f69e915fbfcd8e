package routes

import (
	"raffled/internal/handlers"
	"raffled/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRaffleRoutes sets up routes for raffle entry, lifecycle, and claims
func SetupRaffleRoutes(
	r *gin.RouterGroup,
	jwtSecret string,
	raffleHandler *handlers.RaffleHandler,
	entryHandler *handlers.EntryHandler,
	ticketHandler *handlers.TicketHandler,
	winnerHandler *handlers.WinnerHandler,
) {
	// Public routes (no auth required)
	public := r.Group("/raffles")
	{
		public.GET("/", raffleHandler.ListRaffles)
		public.GET("/:id", raffleHandler.GetRaffle)
		public.GET("/:id/winners", winnerHandler.GetRaffleWinners)
	}

	// Protected entry routes (require authentication)
	raffles := r.Group("/raffles")
	raffles.Use(middleware.AuthRequired(jwtSecret))
	{
		raffles.GET("/:id/can-enter", entryHandler.CanEnter)
		raffles.POST("/:id/enter/coupon", entryHandler.EnterWithCoupon)
		raffles.POST("/:id/enter/purchase", entryHandler.EnterWithPurchase)
		raffles.POST("/:id/enter/promotional", entryHandler.EnterWithPromotion)
		raffles.GET("/:id/tickets", entryHandler.GetMyTickets)
	}

	tickets := r.Group("/tickets")
	tickets.Use(middleware.AuthRequired(jwtSecret))
	{
		tickets.POST("/:id/cancel", ticketHandler.CancelTicket)
	}

	winners := r.Group("/winners")
	winners.Use(middleware.AuthRequired(jwtSecret))
	{
		winners.POST("/:id/claim", winnerHandler.ClaimPrize)
	}

	// Staff routes for on-site verification
	staff := r.Group("/staff")
	staff.Use(middleware.AuthRequired(jwtSecret), middleware.StaffRequired())
	{
		staff.POST("/tickets/verify", ticketHandler.VerifyTicket)
		staff.POST("/winners/verify", winnerHandler.VerifyWinner)
	}

	// Admin routes for raffle lifecycle management
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/raffles", raffleHandler.ListAllRaffles)
		admin.POST("/raffles", raffleHandler.CreateRaffle)
		admin.POST("/raffles/:id/prizes", raffleHandler.AddPrize)
		admin.POST("/raffles/:id/activate", raffleHandler.ActivateRaffle)
		admin.POST("/raffles/:id/pause", raffleHandler.PauseRaffle)
		admin.POST("/raffles/:id/resume", raffleHandler.ResumeRaffle)
		admin.POST("/raffles/:id/cancel", raffleHandler.CancelRaffle)
		admin.POST("/raffles/:id/draw", raffleHandler.ExecuteDraw)
		admin.POST("/winners/:id/notify", winnerHandler.NotifyWinner)
		admin.POST("/winners/:id/delivered", winnerHandler.MarkDelivered)
		admin.POST("/winners/expire-unclaimed", winnerHandler.ExpireUnclaimed)
	}
}
