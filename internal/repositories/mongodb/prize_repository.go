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

type prizeRepository struct {
	collection *mongo.Collection
}

func NewPrizeRepository(db *mongo.Database) interfaces.PrizeRepository {
	return &prizeRepository{
		collection: db.Collection("raffle_prizes"),
	}
}

func (r *prizeRepository) Create(ctx context.Context, prize *models.RafflePrize) error {
	prize.ID = primitive.NewObjectID()
	prize.CreatedAt = time.Now()
	prize.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, prize)
	if err != nil {
		return fmt.Errorf("failed to create prize: %w", err)
	}

	return nil
}

func (r *prizeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RafflePrize, error) {
	var prize models.RafflePrize
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&prize)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("prize")
		}
		return nil, fmt.Errorf("failed to get prize: %w", err)
	}

	return &prize, nil
}

func (r *prizeRepository) GetByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
	return r.findPrizes(ctx, bson.M{"raffle_id": raffleID})
}

func (r *prizeRepository) GetAvailableByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
	filter := bson.M{
		"raffle_id": raffleID,
		"$expr":     bson.M{"$lt": []interface{}{"$quantity_awarded", "$quantity_available"}},
	}

	return r.findPrizes(ctx, filter)
}

// IncrementAwarded bumps the awarded counter, guarded so it can never
// overshoot the available quantity.
func (r *prizeRepository) IncrementAwarded(ctx context.Context, id primitive.ObjectID, count int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":   id,
			"$expr": bson.M{"$lte": []interface{}{bson.M{"$add": []interface{}{"$quantity_awarded", count}}, "$quantity_available"}},
		},
		bson.M{
			"$inc": bson.M{"quantity_awarded": count},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment awarded count: %w", err)
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("prize quantity would be exceeded")
	}

	return nil
}

func (r *prizeRepository) findPrizes(ctx context.Context, filter bson.M) ([]*models.RafflePrize, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "tier", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find prizes: %w", err)
	}
	defer cursor.Close(ctx)

	var prizes []*models.RafflePrize
	for cursor.Next(ctx) {
		var prize models.RafflePrize
		if err := cursor.Decode(&prize); err != nil {
			return nil, fmt.Errorf("failed to decode prize: %w", err)
		}
		prizes = append(prizes, &prize)
	}

	return prizes, nil
}
