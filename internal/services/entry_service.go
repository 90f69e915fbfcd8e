package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/internal/utils"
	"raffled/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CouponEntryRequest struct {
	RaffleID       primitive.ObjectID  `json:"raffle_id"`
	UserID         primitive.ObjectID  `json:"-"`
	CouponRef      string              `json:"coupon_ref" binding:"required"`
	TicketCount    int                 `json:"ticket_count" binding:"required"`
	StationID      *primitive.ObjectID `json:"station_id,omitempty"`
	TransactionRef string              `json:"transaction_ref,omitempty"`
}

type PurchaseEntryRequest struct {
	RaffleID       primitive.ObjectID  `json:"raffle_id"`
	UserID         primitive.ObjectID  `json:"-"`
	TicketCount    int                 `json:"ticket_count" binding:"required"`
	PurchaseAmount float64             `json:"purchase_amount" binding:"required"`
	StationID      *primitive.ObjectID `json:"station_id,omitempty"`
	TransactionRef string              `json:"transaction_ref,omitempty"`
}

type PromotionEntryRequest struct {
	RaffleID    primitive.ObjectID `json:"raffle_id"`
	UserID      primitive.ObjectID `json:"-"`
	TicketCount int                `json:"ticket_count" binding:"required"`
	CampaignRef string             `json:"campaign_ref,omitempty"`
	SourceRef   string             `json:"source_ref,omitempty"`
}

// EntryResult is the shared response shape for all three entry sources.
type EntryResult struct {
	Tickets         []*models.RaffleTicket `json:"tickets"`
	UserTicketTotal int64                  `json:"user_ticket_total"`
	Raffle          *models.RaffleSnapshot `json:"raffle"`
	Events          []models.DomainEvent   `json:"-"`
}

type EntryService interface {
	EnterWithCoupon(ctx context.Context, req *CouponEntryRequest) (*EntryResult, error)
	EnterWithPurchase(ctx context.Context, req *PurchaseEntryRequest) (*EntryResult, error)
	EnterWithPromotion(ctx context.Context, req *PromotionEntryRequest) (*EntryResult, error)

	GetUserTickets(ctx context.Context, raffleID, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RaffleTicket, int64, error)
	VerifyTicket(ctx context.Context, code string, verifiedBy *primitive.ObjectID) (*models.RaffleTicket, error)
	CancelTicket(ctx context.Context, ticketID, userID primitive.ObjectID, reason string) (*models.RaffleTicket, []models.DomainEvent, error)
}

type entryService struct {
	raffleRepo interfaces.RaffleRepository
	ticketRepo interfaces.TicketRepository
	validation TicketValidationService
	log        *logger.Logger
}

func NewEntryService(
	raffleRepo interfaces.RaffleRepository,
	ticketRepo interfaces.TicketRepository,
	validation TicketValidationService,
	log *logger.Logger,
) EntryService {
	return &entryService{
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
		validation: validation,
		log:        log,
	}
}

func (s *entryService) EnterWithCoupon(ctx context.Context, req *CouponEntryRequest) (*EntryResult, error) {
	if req.CouponRef == "" {
		return nil, utils.NewInvalidEntryError(utils.RuleSourceRefRequired, "coupon reference is required")
	}

	return s.issueTickets(ctx, &entryCommand{
		raffleID:       req.RaffleID,
		userID:         req.UserID,
		ticketCount:    req.TicketCount,
		sourceType:     models.SourceCouponRedemption,
		sourceRef:      req.CouponRef,
		stationID:      req.StationID,
		transactionRef: req.TransactionRef,
	})
}

func (s *entryService) EnterWithPurchase(ctx context.Context, req *PurchaseEntryRequest) (*EntryResult, error) {
	if req.PurchaseAmount <= 0 {
		return nil, utils.NewInvalidEntryError(utils.RuleInsufficientAmount, "purchase amount must be positive")
	}

	raffle, err := s.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		return nil, err
	}

	if raffle.EntryFee > 0 && req.PurchaseAmount < raffle.EntryFee*float64(req.TicketCount) {
		return nil, utils.NewInvalidEntryError(utils.RuleInsufficientAmount,
			fmt.Sprintf("purchase amount does not cover the entry fee of %.2f per ticket", raffle.EntryFee))
	}

	return s.issueTickets(ctx, &entryCommand{
		raffleID:       req.RaffleID,
		userID:         req.UserID,
		ticketCount:    req.TicketCount,
		sourceType:     models.SourcePurchase,
		sourceRef:      req.TransactionRef,
		stationID:      req.StationID,
		transactionRef: req.TransactionRef,
		raffle:         raffle,
	})
}

func (s *entryService) EnterWithPromotion(ctx context.Context, req *PromotionEntryRequest) (*EntryResult, error) {
	sourceRef := req.SourceRef
	if sourceRef == "" {
		sourceRef = req.CampaignRef
	}

	return s.issueTickets(ctx, &entryCommand{
		raffleID:    req.RaffleID,
		userID:      req.UserID,
		ticketCount: req.TicketCount,
		sourceType:  models.SourcePromotional,
		sourceRef:   sourceRef,
	})
}

type entryCommand struct {
	raffleID       primitive.ObjectID
	userID         primitive.ObjectID
	ticketCount    int
	sourceType     models.TicketSource
	sourceRef      string
	stationID      *primitive.ObjectID
	transactionRef string
	raffle         *models.Raffle
}

// issueTickets runs the shared precondition pipeline and writes one ticket
// batch. No partial writes: validation happens before any insert, and the
// batch insert is all-or-nothing.
func (s *entryService) issueTickets(ctx context.Context, cmd *entryCommand) (*EntryResult, error) {
	raffle := cmd.raffle
	if raffle == nil {
		var err error
		raffle, err = s.raffleRepo.GetByID(ctx, cmd.raffleID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.validation.CheckEntry(ctx, raffle, cmd.userID, cmd.ticketCount, cmd.sourceType, cmd.sourceRef); err != nil {
		return nil, err
	}

	now := time.Now()
	tickets := make([]*models.RaffleTicket, 0, cmd.ticketCount)
	for i := 0; i < cmd.ticketCount; i++ {
		ticket := &models.RaffleTicket{
			RaffleID:        raffle.ID,
			UserID:          cmd.userID,
			TicketNumber:    utils.GenerateTicketNumber(raffle.ID, cmd.userID, now.Add(time.Duration(i))),
			Status:          models.TicketStatusActive,
			SourceType:      cmd.sourceType,
			SourceReference: cmd.sourceRef,
			SourceSequence:  i,
			StationID:       cmd.stationID,
			TransactionRef:  cmd.transactionRef,
			IsVerified:      true,
		}

		if raffle.RequiresVerification {
			ticket.VerificationCode = utils.GenerateVerificationCode()
			ticket.IsVerified = false
		}

		tickets = append(tickets, ticket)
	}

	if err := s.ticketRepo.CreateMany(ctx, tickets); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateSource) {
			// The unique index caught a concurrent retry of the same entry
			// event; the pre-check above is only advisory.
			return nil, utils.NewInvalidEntryError(utils.RuleDuplicateSource, "a ticket was already issued for this source")
		}
		return nil, err
	}

	// Recompute, never increment: the derived counter is self-healing
	// under concurrent writers.
	snapshot := raffle.Snapshot()
	if count, err := s.refreshParticipantCount(ctx, raffle.ID); err != nil {
		s.log.WithRaffleID(raffle.ID).WithError(err).Warn("Failed to refresh participant count")
	} else if raffle.MaxParticipants > 0 {
		snapshot.RemainingSlots = int64(raffle.MaxParticipants) - count
		if snapshot.RemainingSlots < 0 {
			snapshot.RemainingSlots = 0
		}
	}

	userTotal, err := s.ticketRepo.CountActiveByUserAndRaffle(ctx, raffle.ID, cmd.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user tickets: %w", err)
	}

	ticketIDs := make([]primitive.ObjectID, len(tickets))
	for i, ticket := range tickets {
		ticketIDs[i] = ticket.ID
	}

	s.log.LogEntryEvent(raffle.ID, cmd.userID, string(cmd.sourceType), len(tickets))

	return &EntryResult{
		Tickets:         tickets,
		UserTicketTotal: userTotal,
		Raffle:          snapshot,
		Events: []models.DomainEvent{models.TicketsIssued{
			RaffleID:   raffle.ID,
			UserID:     cmd.userID,
			TicketIDs:  ticketIDs,
			SourceType: cmd.sourceType,
			At:         now,
		}},
	}, nil
}

func (s *entryService) GetUserTickets(ctx context.Context, raffleID, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RaffleTicket, int64, error) {
	if _, err := s.raffleRepo.GetByID(ctx, raffleID); err != nil {
		return nil, 0, err
	}

	return s.ticketRepo.GetByUserAndRaffle(ctx, raffleID, userID, params)
}

func (s *entryService) VerifyTicket(ctx context.Context, code string, verifiedBy *primitive.ObjectID) (*models.RaffleTicket, error) {
	ticket, err := s.ticketRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.validation.CheckVerify(ticket); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"is_verified": true,
	}
	if verifiedBy != nil {
		updates["verified_by"] = *verifiedBy
	}
	if err := s.ticketRepo.Update(ctx, ticket.ID, updates); err != nil {
		return nil, err
	}

	ticket.IsVerified = true
	ticket.VerifiedBy = verifiedBy

	s.log.WithTicketID(ticket.ID).Info("Ticket verified")

	return ticket, nil
}

func (s *entryService) CancelTicket(ctx context.Context, ticketID, userID primitive.ObjectID, reason string) (*models.RaffleTicket, []models.DomainEvent, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}

	raffle, err := s.raffleRepo.GetByID(ctx, ticket.RaffleID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.validation.CheckCancel(ticket, raffle, userID); err != nil {
		return nil, nil, err
	}

	updates := map[string]interface{}{
		"status":        models.TicketStatusCancelled,
		"cancel_reason": reason,
	}
	if err := s.ticketRepo.Update(ctx, ticket.ID, updates); err != nil {
		return nil, nil, err
	}

	ticket.Status = models.TicketStatusCancelled
	ticket.CancelReason = reason

	if _, err := s.refreshParticipantCount(ctx, raffle.ID); err != nil {
		s.log.WithRaffleID(raffle.ID).WithError(err).Warn("Failed to refresh participant count")
	}

	events := []models.DomainEvent{models.TicketCancelled{
		TicketID: ticket.ID,
		RaffleID: raffle.ID,
		UserID:   userID,
		Reason:   reason,
		At:       time.Now(),
	}}

	return ticket, events, nil
}

func (s *entryService) refreshParticipantCount(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	count, err := s.ticketRepo.CountActiveByRaffle(ctx, raffleID)
	if err != nil {
		return 0, err
	}

	if err := s.raffleRepo.SetParticipantCount(ctx, raffleID, count); err != nil {
		return 0, err
	}

	return count, nil
}
