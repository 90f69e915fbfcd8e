package services

import (
	"context"
	"fmt"
	"time"

	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/internal/utils"
	"raffled/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClaimRequest struct {
	WinnerID     primitive.ObjectID `json:"-"`
	UserID       primitive.ObjectID `json:"-"`
	DeliveryInfo string             `json:"delivery_info,omitempty"`
}

type WinnerClaimService interface {
	GetWinner(ctx context.Context, id primitive.ObjectID) (*models.RaffleWinner, error)
	GetRaffleWinners(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleWinner, error)

	// VerifyWinner confirms a winner's identity from the code handed out at
	// draw time, typically by station staff.
	VerifyWinner(ctx context.Context, code string, verifiedBy primitive.ObjectID) (*models.RaffleWinner, error)

	Claim(ctx context.Context, req *ClaimRequest) (*models.RaffleWinner, []models.DomainEvent, error)
	MarkDelivered(ctx context.Context, winnerID primitive.ObjectID, deliveryInfo string) (*models.RaffleWinner, error)

	// ExpireUnclaimed sweeps winners past their claim deadline into the
	// expired_unclaimed terminal state. Returns the number expired.
	ExpireUnclaimed(ctx context.Context) (int, error)
}

type winnerClaimService struct {
	winnerRepo interfaces.WinnerRepository
	prizeRepo  interfaces.PrizeRepository
	log        *logger.Logger
}

func NewWinnerClaimService(
	winnerRepo interfaces.WinnerRepository,
	prizeRepo interfaces.PrizeRepository,
	log *logger.Logger,
) WinnerClaimService {
	return &winnerClaimService{
		winnerRepo: winnerRepo,
		prizeRepo:  prizeRepo,
		log:        log,
	}
}

func (s *winnerClaimService) GetWinner(ctx context.Context, id primitive.ObjectID) (*models.RaffleWinner, error) {
	return s.winnerRepo.GetByID(ctx, id)
}

func (s *winnerClaimService) GetRaffleWinners(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleWinner, error) {
	return s.winnerRepo.GetByRaffle(ctx, raffleID)
}

func (s *winnerClaimService) VerifyWinner(ctx context.Context, code string, verifiedBy primitive.ObjectID) (*models.RaffleWinner, error) {
	winner, err := s.winnerRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if winner.IsVerified {
		return nil, utils.NewInvalidStateError("winner is already verified")
	}
	if !winner.Status.CanTransitionTo(models.WinnerStatusVerified) {
		return nil, utils.NewInvalidStateError("winner in status %s cannot be verified", winner.Status)
	}

	now := time.Now()
	if winner.IsClaimExpired(now) {
		return nil, utils.NewClaimExpiredError(fmt.Sprintf("claim window closed on %s", winner.ClaimDeadline.Format(time.RFC3339)))
	}

	updates := map[string]interface{}{
		"status":      models.WinnerStatusVerified,
		"is_verified": true,
		"verified_at": now,
		"verified_by": verifiedBy,
	}
	if err := s.winnerRepo.Update(ctx, winner.ID, updates); err != nil {
		return nil, err
	}

	winner.Status = models.WinnerStatusVerified
	winner.IsVerified = true
	winner.VerifiedAt = &now
	winner.VerifiedBy = &verifiedBy

	s.log.LogWinnerEvent(winner.ID, winner.RaffleID, "verified")

	return winner, nil
}

func (s *winnerClaimService) Claim(ctx context.Context, req *ClaimRequest) (*models.RaffleWinner, []models.DomainEvent, error) {
	winner, err := s.winnerRepo.GetByID(ctx, req.WinnerID)
	if err != nil {
		return nil, nil, err
	}

	if winner.UserID != req.UserID {
		return nil, nil, utils.NewForbiddenError("prize belongs to another winner")
	}

	now := time.Now()
	if winner.IsClaimExpired(now) {
		return nil, nil, utils.NewClaimExpiredError(fmt.Sprintf("claim window closed on %s", winner.ClaimDeadline.Format(time.RFC3339)))
	}

	prize, err := s.prizeRepo.GetByID(ctx, winner.PrizeID)
	if err != nil {
		return nil, nil, err
	}

	if prize.RequiresVerification && !winner.IsVerified {
		return nil, nil, utils.NewNotYetVerifiedError("prize must be verified before it can be claimed")
	}

	if !winner.Status.CanTransitionTo(models.WinnerStatusClaimed) {
		return nil, nil, utils.NewInvalidStateError("winner in status %s cannot claim", winner.Status)
	}

	previous := winner.Status
	updates := map[string]interface{}{
		"status":     models.WinnerStatusClaimed,
		"claimed_at": now,
	}
	if req.DeliveryInfo != "" {
		updates["delivery_info"] = req.DeliveryInfo
	}
	if err := s.winnerRepo.Update(ctx, winner.ID, updates); err != nil {
		return nil, nil, err
	}

	winner.Status = models.WinnerStatusClaimed
	winner.ClaimedAt = &now
	if req.DeliveryInfo != "" {
		winner.DeliveryInfo = req.DeliveryInfo
	}

	s.log.LogWinnerEvent(winner.ID, winner.RaffleID, "claimed")

	events := []models.DomainEvent{models.WinnerStatusChanged{
		WinnerID: winner.ID,
		RaffleID: winner.RaffleID,
		From:     previous,
		To:       models.WinnerStatusClaimed,
		At:       now,
	}}

	return winner, events, nil
}

func (s *winnerClaimService) MarkDelivered(ctx context.Context, winnerID primitive.ObjectID, deliveryInfo string) (*models.RaffleWinner, error) {
	winner, err := s.winnerRepo.GetByID(ctx, winnerID)
	if err != nil {
		return nil, err
	}

	if !winner.Status.CanTransitionTo(models.WinnerStatusDelivered) {
		return nil, utils.NewInvalidStateError("winner in status %s cannot be marked delivered", winner.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.WinnerStatusDelivered,
		"delivered_at": now,
	}
	if deliveryInfo != "" {
		updates["delivery_info"] = deliveryInfo
	}
	if err := s.winnerRepo.Update(ctx, winner.ID, updates); err != nil {
		return nil, err
	}

	winner.Status = models.WinnerStatusDelivered
	winner.DeliveredAt = &now
	if deliveryInfo != "" {
		winner.DeliveryInfo = deliveryInfo
	}

	s.log.LogWinnerEvent(winner.ID, winner.RaffleID, "delivered")

	return winner, nil
}

func (s *winnerClaimService) ExpireUnclaimed(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := s.winnerRepo.GetClaimExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, winner := range expired {
		updates := map[string]interface{}{
			"status": models.WinnerStatusExpiredUnclaimed,
		}
		if err := s.winnerRepo.Update(ctx, winner.ID, updates); err != nil {
			s.log.WithField("winner_id", winner.ID.Hex()).WithError(err).Error("Failed to expire unclaimed winner")
			continue
		}

		s.log.LogWinnerEvent(winner.ID, winner.RaffleID, "claim_expired")
		count++
	}

	return count, nil
}
