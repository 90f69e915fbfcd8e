package interfaces

import (
	"context"

	"raffled/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PrizeRepository interface {
	Create(ctx context.Context, prize *models.RafflePrize) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RafflePrize, error)
	GetByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error)

	// GetAvailableByRaffle returns prizes with remaining quantity, ordered
	// by tier ascending (grand prize first).
	GetAvailableByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error)

	IncrementAwarded(ctx context.Context, id primitive.ObjectID, count int) error
}
