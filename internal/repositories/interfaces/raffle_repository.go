package interfaces

import (
	"context"

	"raffled/internal/models"
	"raffled/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RaffleRepository interface {
	// Basic CRUD
	Create(ctx context.Context, raffle *models.Raffle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	GetByName(ctx context.Context, name string) (*models.Raffle, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	List(ctx context.Context, publicOnly bool, params *utils.PaginationParams) ([]*models.Raffle, int64, error)

	// TransitionStatus atomically moves a raffle from one of the given
	// states to the target state. It reports false when the raffle was not
	// in any of the expected states, which is the losing side of a race.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error)

	// SetParticipantCount overwrites the cached derived counter.
	SetParticipantCount(ctx context.Context, id primitive.ObjectID, count int64) error
}
