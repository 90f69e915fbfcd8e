package services

import (
	"context"
	"fmt"
	"time"

	"raffled/internal/draw"
	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/internal/utils"
	"raffled/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawLocker is the advisory lock used as defense in depth around a draw.
// The conditional status transition in the raffle repository remains the
// actual mutual-exclusion point.
type DrawLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

type DrawResult struct {
	Raffle  *models.Raffle         `json:"raffle"`
	Winners []*models.RaffleWinner `json:"winners"`
	Events  []models.DomainEvent   `json:"-"`
}

type RaffleLifecycleService interface {
	CreateRaffle(ctx context.Context, raffle *models.Raffle) (*models.Raffle, error)
	GetRaffle(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	ListRaffles(ctx context.Context, publicOnly bool, params *utils.PaginationParams) ([]*models.Raffle, int64, error)
	AddPrize(ctx context.Context, prize *models.RafflePrize) (*models.RafflePrize, error)

	Activate(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	Pause(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	Resume(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	Cancel(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)

	ExecuteDraw(ctx context.Context, id primitive.ObjectID) (*DrawResult, error)
}

type raffleLifecycleService struct {
	raffleRepo   interfaces.RaffleRepository
	ticketRepo   interfaces.TicketRepository
	prizeRepo    interfaces.PrizeRepository
	winnerRepo   interfaces.WinnerRepository
	engine       *draw.Engine
	locker       DrawLocker
	notification NotificationService
	drawLockTTL  time.Duration
	log          *logger.Logger
}

func NewRaffleLifecycleService(
	raffleRepo interfaces.RaffleRepository,
	ticketRepo interfaces.TicketRepository,
	prizeRepo interfaces.PrizeRepository,
	winnerRepo interfaces.WinnerRepository,
	engine *draw.Engine,
	locker DrawLocker,
	notification NotificationService,
	drawLockTTL time.Duration,
	log *logger.Logger,
) RaffleLifecycleService {
	if drawLockTTL <= 0 {
		drawLockTTL = utils.DrawLockTTL
	}

	return &raffleLifecycleService{
		raffleRepo:   raffleRepo,
		ticketRepo:   ticketRepo,
		prizeRepo:    prizeRepo,
		winnerRepo:   winnerRepo,
		engine:       engine,
		locker:       locker,
		notification: notification,
		drawLockTTL:  drawLockTTL,
		log:          log,
	}
}

func (s *raffleLifecycleService) CreateRaffle(ctx context.Context, raffle *models.Raffle) (*models.Raffle, error) {
	if err := validateRaffleDefinition(raffle); err != nil {
		return nil, err
	}

	raffle.Status = models.RaffleStatusDraft
	raffle.ParticipantCount = 0

	if err := s.raffleRepo.Create(ctx, raffle); err != nil {
		return nil, err
	}

	s.log.WithRaffleID(raffle.ID).Info("Raffle created")

	return raffle, nil
}

func validateRaffleDefinition(raffle *models.Raffle) error {
	if raffle.Name == "" {
		return utils.NewInvalidEntryError("name_required", "raffle name is required")
	}
	if !raffle.RegistrationStart.Before(raffle.RegistrationEnd) {
		return utils.NewInvalidEntryError("registration_window", "registration start must precede registration end")
	}
	if !raffle.RegistrationEnd.Before(raffle.DrawDate) {
		return utils.NewInvalidEntryError("draw_date", "draw date must be after registration end")
	}
	if raffle.MaxTicketsPerUser > 0 && raffle.MaxTicketsPerUser < raffle.MinTicketsToParticipate {
		return utils.NewInvalidEntryError("ticket_limits", "max tickets per user cannot be below the participation minimum")
	}

	return nil
}

func (s *raffleLifecycleService) GetRaffle(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	return s.raffleRepo.GetByID(ctx, id)
}

func (s *raffleLifecycleService) ListRaffles(ctx context.Context, publicOnly bool, params *utils.PaginationParams) ([]*models.Raffle, int64, error) {
	return s.raffleRepo.List(ctx, publicOnly, params)
}

func (s *raffleLifecycleService) AddPrize(ctx context.Context, prize *models.RafflePrize) (*models.RafflePrize, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, prize.RaffleID)
	if err != nil {
		return nil, err
	}

	// Prize pools are structurally mutable only while the raffle is a draft.
	if raffle.Status != models.RaffleStatusDraft {
		return nil, utils.NewInvalidStateError("prizes can only be added to a draft raffle")
	}

	if prize.QuantityAvailable <= 0 {
		return nil, utils.NewInvalidEntryError("prize_quantity", "prize quantity must be positive")
	}

	prize.QuantityAwarded = 0
	if err := s.prizeRepo.Create(ctx, prize); err != nil {
		return nil, err
	}

	return prize, nil
}

func (s *raffleLifecycleService) Activate(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	prizes, err := s.prizeRepo.GetAvailableByRaffle(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(prizes) == 0 {
		return nil, utils.NewInvalidStateError("raffle cannot be activated without an available prize")
	}

	return s.transition(ctx, id, []models.RaffleStatus{models.RaffleStatusDraft}, models.RaffleStatusActive)
}

func (s *raffleLifecycleService) Pause(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	return s.transition(ctx, id, []models.RaffleStatus{models.RaffleStatusActive}, models.RaffleStatusPaused)
}

func (s *raffleLifecycleService) Resume(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	return s.transition(ctx, id, []models.RaffleStatus{models.RaffleStatusPaused}, models.RaffleStatusActive)
}

func (s *raffleLifecycleService) Cancel(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	return s.transition(ctx, id,
		[]models.RaffleStatus{models.RaffleStatusDraft, models.RaffleStatusActive, models.RaffleStatusPaused},
		models.RaffleStatusCancelled)
}

func (s *raffleLifecycleService) transition(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.raffleRepo.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewInvalidStateError("raffle in status %s cannot transition to %s", raffle.Status, to)
	}

	previous := raffle.Status
	raffle.Status = to

	s.log.LogDrawEvent(id, "status_changed", map[string]interface{}{
		"from": string(previous),
		"to":   string(to),
	})

	return raffle, nil
}

// ExecuteDraw runs the winner selection for a raffle exactly once. The
// conditional transition to completed is the mutual-exclusion point: a
// concurrent second attempt loses the transition and is rejected outright.
func (s *raffleLifecycleService) ExecuteDraw(ctx context.Context, id primitive.ObjectID) (*DrawResult, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if raffle.Status == models.RaffleStatusCompleted {
		return nil, utils.NewInvalidStateError("raffle has already been drawn")
	}
	if !raffle.IsEligibleForDraw(now) {
		return nil, utils.NewInvalidStateError("raffle in status %s is not eligible for a draw yet", raffle.Status)
	}

	if s.locker != nil {
		lockKey := utils.CacheDrawLockPrefix + id.Hex()
		acquired, err := s.locker.SetNX(ctx, lockKey, now.Unix(), s.drawLockTTL)
		if err != nil {
			s.log.WithRaffleID(id).WithError(err).Warn("Draw lock unavailable; relying on status transition")
		} else if !acquired {
			return nil, utils.NewInvalidStateError("a draw is already in progress for this raffle")
		} else {
			defer s.locker.Delete(ctx, lockKey)
		}
	}

	// Refusal conditions are checked before any state changes: a raffle is
	// never silently drawn with zero winners because of a data problem.
	prizes, err := s.prizeRepo.GetAvailableByRaffle(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(prizes) == 0 {
		return nil, utils.NewInvalidStateError("raffle has no prizes with remaining quantity")
	}

	tickets, err := s.ticketRepo.GetActiveByRaffle(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, utils.NewInvalidStateError("raffle has no eligible tickets")
	}

	previous := raffle.Status
	won, err := s.raffleRepo.TransitionStatus(ctx, id,
		[]models.RaffleStatus{models.RaffleStatusActive, models.RaffleStatusPaused},
		models.RaffleStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, utils.NewInvalidStateError("raffle has already been drawn")
	}

	winners, err := s.engine.Distribute(raffle, tickets, prizes)
	if err != nil {
		return nil, s.abortDraw(ctx, id, previous, fmt.Errorf("winner selection failed: %w", err))
	}

	if err := s.persistDraw(ctx, raffle, winners); err != nil {
		return nil, err
	}

	raffle.Status = models.RaffleStatusCompleted

	s.log.LogDrawEvent(id, "draw_completed", map[string]interface{}{
		"winner_count":  len(winners),
		"eligible_pool": len(tickets),
		"prize_count":   len(prizes),
	})

	if s.notification != nil {
		s.notification.NotifyWinners(ctx, winners)
	}

	return &DrawResult{
		Raffle:  raffle,
		Winners: winners,
		Events: []models.DomainEvent{
			models.RaffleStatusChanged{RaffleID: id, From: previous, To: models.RaffleStatusCompleted, At: now},
			models.RaffleDrawn{RaffleID: id, WinnerCount: len(winners), At: now},
		},
	}, nil
}

// persistDraw writes the winner set, flips the winning tickets, and bumps
// the prize counters. A failure before the winners are durable rolls the
// status transition back so the raffle is never left completed with no
// winners persisted; a failure after that point is surfaced for caller
// retry of the remaining updates, never as a re-draw.
func (s *raffleLifecycleService) persistDraw(ctx context.Context, raffle *models.Raffle, winners []*models.RaffleWinner) error {
	if err := s.winnerRepo.CreateMany(ctx, winners); err != nil {
		return s.abortDraw(ctx, raffle.ID, raffle.Status, fmt.Errorf("failed to persist winners: %w", err))
	}

	ticketIDs := make([]primitive.ObjectID, 0, len(winners))
	perPrize := make(map[primitive.ObjectID]int)
	for _, winner := range winners {
		ticketIDs = append(ticketIDs, winner.TicketID)
		perPrize[winner.PrizeID]++
	}

	if err := s.ticketRepo.MarkWon(ctx, ticketIDs); err != nil {
		return fmt.Errorf("draw persisted winners but failed to mark tickets won: %w", err)
	}

	for prizeID, count := range perPrize {
		if err := s.prizeRepo.IncrementAwarded(ctx, prizeID, count); err != nil {
			return fmt.Errorf("draw persisted winners but failed to update prize counters: %w", err)
		}
	}

	// Totals re-check: the stored winner count must equal the selected set.
	// A mismatch means a partially recorded draw and needs operator review.
	persisted, err := s.winnerRepo.CountByRaffle(ctx, raffle.ID)
	if err != nil {
		s.log.WithRaffleID(raffle.ID).WithError(err).Warn("Failed to re-check winner totals after draw")
	} else if persisted != int64(len(winners)) {
		s.log.WithRaffleID(raffle.ID).WithFields(map[string]interface{}{
			"persisted": persisted,
			"selected":  len(winners),
		}).Error("Winner totals mismatch after draw")
	}

	return nil
}

func (s *raffleLifecycleService) abortDraw(ctx context.Context, id primitive.ObjectID, restoreTo models.RaffleStatus, cause error) error {
	restored, err := s.raffleRepo.TransitionStatus(ctx, id,
		[]models.RaffleStatus{models.RaffleStatusCompleted}, restoreTo)
	if err != nil || !restored {
		s.log.WithRaffleID(id).WithError(cause).Error("Draw aborted and status restore failed; manual intervention required")
		return fmt.Errorf("draw aborted, status restore failed: %w", cause)
	}

	s.log.WithRaffleID(id).WithError(cause).Error("Draw aborted; raffle status restored")

	return cause
}
