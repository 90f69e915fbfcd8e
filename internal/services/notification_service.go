package services

import (
	"context"
	"fmt"
	"time"

	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/pkg/logger"
	"raffled/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactDirectory resolves a user to a reachable phone number. The raffle
// core holds no profile data, so lookup is delegated to whatever user
// service the deployment runs.
type ContactDirectory interface {
	PhoneNumber(ctx context.Context, userID primitive.ObjectID) (string, error)
}

// NotificationService delivers win notifications. Delivery is best effort:
// a failed send is logged and retried on the next Notify call, it never
// blocks or fails the draw. NotifyWinnerByID backs the admin resend
// endpoint for winners whose draw-time send failed.
type NotificationService interface {
	NotifyWinners(ctx context.Context, winners []*models.RaffleWinner)
	NotifyWinner(ctx context.Context, winner *models.RaffleWinner) error
	NotifyWinnerByID(ctx context.Context, winnerID primitive.ObjectID) (*models.RaffleWinner, error)
}

type notificationService struct {
	winnerRepo interfaces.WinnerRepository
	directory  ContactDirectory
	smsService sms.SMSProvider
	log        *logger.Logger
}

func NewNotificationService(
	winnerRepo interfaces.WinnerRepository,
	directory ContactDirectory,
	smsService sms.SMSProvider,
	log *logger.Logger,
) NotificationService {
	return &notificationService{
		winnerRepo: winnerRepo,
		directory:  directory,
		smsService: smsService,
		log:        log,
	}
}

func (s *notificationService) NotifyWinners(ctx context.Context, winners []*models.RaffleWinner) {
	for _, winner := range winners {
		if err := s.NotifyWinner(ctx, winner); err != nil {
			s.log.WithField("winner_id", winner.ID.Hex()).WithError(err).Warn("Winner notification failed")
		}
	}
}

func (s *notificationService) NotifyWinnerByID(ctx context.Context, winnerID primitive.ObjectID) (*models.RaffleWinner, error) {
	winner, err := s.winnerRepo.GetByID(ctx, winnerID)
	if err != nil {
		return nil, err
	}

	if err := s.NotifyWinner(ctx, winner); err != nil {
		return nil, err
	}

	return winner, nil
}

func (s *notificationService) NotifyWinner(ctx context.Context, winner *models.RaffleWinner) error {
	if winner.NotifiedAt != nil {
		return nil
	}

	if s.directory == nil || s.smsService == nil {
		return fmt.Errorf("notification channel is not configured")
	}

	phone, err := s.directory.PhoneNumber(ctx, winner.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve winner contact: %w", err)
	}

	message := fmt.Sprintf(
		"Congratulations! You won %s. Claim your prize before %s using code %s.",
		winner.PrizeName,
		winner.ClaimDeadline.Format("Jan 2, 2006"),
		winner.VerificationCode,
	)

	resp, err := s.smsService.SendSMS(ctx, &sms.SMSRequest{
		To:      phone,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("failed to send winner SMS: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"notified_at": now,
	}
	if winner.Status == models.WinnerStatusPendingClaim {
		updates["status"] = models.WinnerStatusNotified
		winner.Status = models.WinnerStatusNotified
	}
	if err := s.winnerRepo.Update(ctx, winner.ID, updates); err != nil {
		return fmt.Errorf("notification sent but failed to record it: %w", err)
	}
	winner.NotifiedAt = &now

	s.log.WithField("message_id", resp.MessageID).LogWinnerEvent(winner.ID, winner.RaffleID, "notified")

	return nil
}
