package interfaces

import (
	"context"
	"time"

	"raffled/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WinnerRepository interface {
	CreateMany(ctx context.Context, winners []*models.RaffleWinner) error

	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RaffleWinner, error)
	GetByVerificationCode(ctx context.Context, code string) (*models.RaffleWinner, error)
	GetByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleWinner, error)
	CountByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error)

	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// GetClaimExpired returns winners still awaiting a claim whose deadline
	// has passed, for the periodic expiry sweep.
	GetClaimExpired(ctx context.Context, asOf time.Time) ([]*models.RaffleWinner, error)
}
