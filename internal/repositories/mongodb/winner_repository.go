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

type winnerRepository struct {
	collection *mongo.Collection
}

func NewWinnerRepository(db *mongo.Database) interfaces.WinnerRepository {
	return &winnerRepository{
		collection: db.Collection("raffle_winners"),
	}
}

func (r *winnerRepository) CreateMany(ctx context.Context, winners []*models.RaffleWinner) error {
	if len(winners) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(winners))
	now := time.Now()
	for _, winner := range winners {
		if winner.ID.IsZero() {
			winner.ID = primitive.NewObjectID()
		}
		winner.CreatedAt = now
		winner.UpdatedAt = now
		docs = append(docs, winner)
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("winner already recorded for prize/ticket pair: %w", err)
		}
		return fmt.Errorf("failed to create winners: %w", err)
	}

	return nil
}

func (r *winnerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RaffleWinner, error) {
	var winner models.RaffleWinner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&winner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("winner")
		}
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}

	return &winner, nil
}

func (r *winnerRepository) GetByVerificationCode(ctx context.Context, code string) (*models.RaffleWinner, error) {
	var winner models.RaffleWinner
	err := r.collection.FindOne(ctx, bson.M{"verification_code": code}).Decode(&winner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("winner")
		}
		return nil, fmt.Errorf("failed to get winner by verification code: %w", err)
	}

	return &winner, nil
}

func (r *winnerRepository) GetByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleWinner, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"raffle_id": raffleID},
		options.Find().SetSort(bson.D{{Key: "won_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find winners: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeWinners(ctx, cursor)
}

func (r *winnerRepository) CountByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"raffle_id": raffleID})
	if err != nil {
		return 0, fmt.Errorf("failed to count winners: %w", err)
	}

	return count, nil
}

func (r *winnerRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update winner: %w", err)
	}

	return nil
}

func (r *winnerRepository) GetClaimExpired(ctx context.Context, asOf time.Time) ([]*models.RaffleWinner, error) {
	filter := bson.M{
		"status":         bson.M{"$in": []models.WinnerStatus{models.WinnerStatusPendingClaim, models.WinnerStatusNotified}},
		"claim_deadline": bson.M{"$lt": asOf},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired winners: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeWinners(ctx, cursor)
}

func decodeWinners(ctx context.Context, cursor *mongo.Cursor) ([]*models.RaffleWinner, error) {
	var winners []*models.RaffleWinner
	for cursor.Next(ctx) {
		var winner models.RaffleWinner
		if err := cursor.Decode(&winner); err != nil {
			return nil, fmt.Errorf("failed to decode winner: %w", err)
		}
		winners = append(winners, &winner)
	}

	return winners, nil
}
