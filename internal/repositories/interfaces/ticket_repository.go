package interfaces

import (
	"context"
	"errors"

	"raffled/internal/models"
	"raffled/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateSource is returned when an insert trips the unique index on
// (user_id, raffle_id, source_type, source_reference, source_seq).
var ErrDuplicateSource = errors.New("ticket already issued for this source")

type TicketRepository interface {
	// CreateMany inserts one batch of tickets. The unique index on
	// (user_id, raffle_id, source_type, source_reference, source_seq) is the backstop
	// against concurrent double-crediting; a duplicate-key failure must be
	// reported as ErrDuplicateSource.
	CreateMany(ctx context.Context, tickets []*models.RaffleTicket) error

	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RaffleTicket, error)
	GetByVerificationCode(ctx context.Context, code string) (*models.RaffleTicket, error)
	GetByUserAndRaffle(ctx context.Context, raffleID, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RaffleTicket, int64, error)

	// GetActiveByRaffle returns the full eligible pool for a draw.
	GetActiveByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error)

	CountActiveByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error)
	CountActiveByUserAndRaffle(ctx context.Context, raffleID, userID primitive.ObjectID) (int64, error)
	ExistsBySource(ctx context.Context, raffleID, userID primitive.ObjectID, sourceType models.TicketSource, sourceRef string) (bool, error)

	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// MarkWon flips the winning tickets to won status in one update.
	MarkWon(ctx context.Context, ids []primitive.ObjectID) error
}
