package mongodb

import (
	"context"
	"fmt"
	"time"

	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ticketRepository struct {
	collection *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) interfaces.TicketRepository {
	return &ticketRepository{
		collection: db.Collection("raffle_tickets"),
	}
}

func (r *ticketRepository) CreateMany(ctx context.Context, tickets []*models.RaffleTicket) error {
	docs := make([]interface{}, 0, len(tickets))
	now := time.Now()
	for _, ticket := range tickets {
		if ticket.ID.IsZero() {
			ticket.ID = primitive.NewObjectID()
		}
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		docs = append(docs, ticket)
	}

	// Ordered insert: a duplicate-source collision aborts the whole batch,
	// so a retried entry never produces a partial ticket set.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicateSource
		}
		return fmt.Errorf("failed to create tickets: %w", err)
	}

	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RaffleTicket, error) {
	var ticket models.RaffleTicket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("ticket")
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) GetByVerificationCode(ctx context.Context, code string) (*models.RaffleTicket, error) {
	var ticket models.RaffleTicket
	err := r.collection.FindOne(ctx, bson.M{"verification_code": code}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("ticket")
		}
		return nil, fmt.Errorf("failed to get ticket by verification code: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) GetByUserAndRaffle(ctx context.Context, raffleID, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RaffleTicket, int64, error) {
	filter := bson.M{
		"raffle_id": raffleID,
		"user_id":   userID,
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find tickets: %w", err)
	}
	defer cursor.Close(ctx)

	tickets, err := decodeTickets(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

func (r *ticketRepository) GetActiveByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error) {
	filter := bson.M{
		"raffle_id": raffleID,
		"status":    models.TicketStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find active tickets: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeTickets(ctx, cursor)
}

func (r *ticketRepository) CountActiveByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"raffle_id": raffleID,
		"status":    models.TicketStatusActive,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active tickets: %w", err)
	}

	return count, nil
}

func (r *ticketRepository) CountActiveByUserAndRaffle(ctx context.Context, raffleID, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"raffle_id": raffleID,
		"user_id":   userID,
		"status":    models.TicketStatusActive,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count user tickets: %w", err)
	}

	return count, nil
}

func (r *ticketRepository) ExistsBySource(ctx context.Context, raffleID, userID primitive.ObjectID, sourceType models.TicketSource, sourceRef string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"raffle_id":        raffleID,
		"user_id":          userID,
		"source_type":      sourceType,
		"source_reference": sourceRef,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check ticket source: %w", err)
	}

	return count > 0, nil
}

func (r *ticketRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	return nil
}

func (r *ticketRepository) MarkWon(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{
			"status":     models.TicketStatusWon,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark tickets won: %w", err)
	}

	return nil
}

func decodeTickets(ctx context.Context, cursor *mongo.Cursor) ([]*models.RaffleTicket, error) {
	var tickets []*models.RaffleTicket
	for cursor.Next(ctx) {
		var ticket models.RaffleTicket
		if err := cursor.Decode(&ticket); err != nil {
			return nil, fmt.Errorf("failed to decode ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}

	return tickets, nil
}
