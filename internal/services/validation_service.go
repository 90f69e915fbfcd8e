package services

import (
	"context"
	"fmt"
	"time"

	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationResult is returned instead of an error so callers can surface
// "why not" to end users without exception-driven control flow.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	CanEnter bool   `json:"can_enter"`
	Message  string `json:"message"`
}

type TicketValidationService interface {
	// CanEnter answers the explicit "can I enter?" query endpoint.
	CanEnter(ctx context.Context, raffleID, userID primitive.ObjectID, ticketCount int, sourceType models.TicketSource, sourceRef string) (*ValidationResult, error)

	// CheckEntry runs the shared entry precondition pipeline, returning an
	// InvalidEntry error naming the first violated rule.
	CheckEntry(ctx context.Context, raffle *models.Raffle, userID primitive.ObjectID, ticketCount int, sourceType models.TicketSource, sourceRef string) error

	CheckCancel(ticket *models.RaffleTicket, raffle *models.Raffle, userID primitive.ObjectID) error
	CheckVerify(ticket *models.RaffleTicket) error
}

type ticketValidationService struct {
	raffleRepo interfaces.RaffleRepository
	ticketRepo interfaces.TicketRepository
}

func NewTicketValidationService(raffleRepo interfaces.RaffleRepository, ticketRepo interfaces.TicketRepository) TicketValidationService {
	return &ticketValidationService{
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
	}
}

func (s *ticketValidationService) CanEnter(ctx context.Context, raffleID, userID primitive.ObjectID, ticketCount int, sourceType models.TicketSource, sourceRef string) (*ValidationResult, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	if err := s.CheckEntry(ctx, raffle, userID, ticketCount, sourceType, sourceRef); err != nil {
		if entryErr, ok := err.(*utils.InvalidEntryError); ok {
			return &ValidationResult{Valid: false, CanEnter: false, Message: entryErr.Message}, nil
		}
		return nil, err
	}

	return &ValidationResult{Valid: true, CanEnter: true, Message: "entry allowed"}, nil
}

func (s *ticketValidationService) CheckEntry(ctx context.Context, raffle *models.Raffle, userID primitive.ObjectID, ticketCount int, sourceType models.TicketSource, sourceRef string) error {
	now := time.Now()

	if !raffle.IsRegistrationOpen(now) {
		return utils.NewInvalidEntryError(utils.RuleRegistrationClosed, "raffle registration is not open")
	}

	if ticketCount <= 0 {
		return utils.NewInvalidEntryError(utils.RuleTicketCountBounds, "ticket count must be positive")
	}

	if raffle.MaxParticipants > 0 {
		activeCount, err := s.ticketRepo.CountActiveByRaffle(ctx, raffle.ID)
		if err != nil {
			return fmt.Errorf("failed to check raffle capacity: %w", err)
		}
		if activeCount >= int64(raffle.MaxParticipants) {
			return utils.NewInvalidEntryError(utils.RuleCapacityReached, "raffle has reached maximum participants")
		}
	}

	userCount, err := s.ticketRepo.CountActiveByUserAndRaffle(ctx, raffle.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to check user ticket count: %w", err)
	}

	projected := userCount + int64(ticketCount)
	if raffle.MaxTicketsPerUser > 0 && projected > int64(raffle.MaxTicketsPerUser) {
		return utils.NewInvalidEntryError(utils.RuleTicketCountBounds,
			fmt.Sprintf("entry would exceed the limit of %d tickets per user", raffle.MaxTicketsPerUser))
	}
	if projected < int64(raffle.MinTicketsToParticipate) {
		return utils.NewInvalidEntryError(utils.RuleTicketCountBounds,
			fmt.Sprintf("at least %d tickets are required to participate", raffle.MinTicketsToParticipate))
	}

	if sourceRef != "" {
		exists, err := s.ticketRepo.ExistsBySource(ctx, raffle.ID, userID, sourceType, sourceRef)
		if err != nil {
			return fmt.Errorf("failed to check duplicate source: %w", err)
		}
		if exists {
			return utils.NewInvalidEntryError(utils.RuleDuplicateSource, "a ticket was already issued for this source")
		}
	}

	return nil
}

func (s *ticketValidationService) CheckCancel(ticket *models.RaffleTicket, raffle *models.Raffle, userID primitive.ObjectID) error {
	if ticket.UserID != userID {
		return utils.NewForbiddenError("ticket belongs to another user")
	}

	if raffle.Status == models.RaffleStatusCompleted {
		return utils.NewInvalidStateError("tickets cannot be cancelled after the draw has completed")
	}

	if !ticket.Status.CanTransitionTo(models.TicketStatusCancelled) {
		return utils.NewInvalidStateError("ticket in status %s cannot be cancelled", ticket.Status)
	}

	return nil
}

func (s *ticketValidationService) CheckVerify(ticket *models.RaffleTicket) error {
	if ticket.Status != models.TicketStatusActive {
		return utils.NewInvalidStateError("only active tickets can be verified")
	}

	if ticket.IsVerified {
		return utils.NewInvalidStateError("ticket is already verified")
	}

	return nil
}
