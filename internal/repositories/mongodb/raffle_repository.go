package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"raffled/internal/models"
	"raffled/internal/repositories/interfaces"
	"raffled/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type raffleRepository struct {
	collection *mongo.Collection
	cache      CacheService
	cacheTTL   time.Duration
}

func NewRaffleRepository(db *mongo.Database, cache CacheService, cacheTTL time.Duration) interfaces.RaffleRepository {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &raffleRepository{
		collection: db.Collection("raffles"),
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	raffle.ID = primitive.NewObjectID()
	raffle.NameLower = strings.ToLower(raffle.Name)
	raffle.CreatedAt = time.Now()
	raffle.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, raffle)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("raffle name already in use: %w", err)
		}
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	return nil
}

func (r *raffleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	if raffle := r.getRaffleFromCache(ctx, id.Hex()); raffle != nil {
		return raffle, nil
	}

	var raffle models.Raffle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raffle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("raffle")
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	r.cacheRaffle(ctx, &raffle)

	return &raffle, nil
}

func (r *raffleRepository) GetByName(ctx context.Context, name string) (*models.Raffle, error) {
	var raffle models.Raffle
	err := r.collection.FindOne(ctx, bson.M{"name_lower": strings.ToLower(name)}).Decode(&raffle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("raffle")
		}
		return nil, fmt.Errorf("failed to get raffle by name: %w", err)
	}

	return &raffle, nil
}

func (r *raffleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	if name, exists := updates["name"]; exists {
		if nameStr, ok := name.(string); ok {
			updates["name_lower"] = strings.ToLower(nameStr)
		}
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update raffle: %w", err)
	}

	r.invalidateRaffleCache(ctx, id.Hex())

	return nil
}

func (r *raffleRepository) List(ctx context.Context, publicOnly bool, params *utils.PaginationParams) ([]*models.Raffle, int64, error) {
	filter := bson.M{}
	if publicOnly {
		filter["is_public"] = true
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count raffles: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find raffles: %w", err)
	}
	defer cursor.Close(ctx)

	var raffles []*models.Raffle
	for cursor.Next(ctx) {
		var raffle models.Raffle
		if err := cursor.Decode(&raffle); err != nil {
			return nil, 0, fmt.Errorf("failed to decode raffle: %w", err)
		}
		raffles = append(raffles, &raffle)
	}

	return raffles, total, nil
}

// TransitionStatus is the mutual-exclusion point for the raffle state
// machine: the update is conditioned on the current status, so exactly one
// concurrent caller wins a given transition.
func (r *raffleRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":    id,
			"status": bson.M{"$in": from},
		},
		bson.M{"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition raffle status: %w", err)
	}

	r.invalidateRaffleCache(ctx, id.Hex())

	return result.ModifiedCount == 1, nil
}

func (r *raffleRepository) SetParticipantCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"participant_count": count,
			"updated_at":        time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set participant count: %w", err)
	}

	r.invalidateRaffleCache(ctx, id.Hex())

	return nil
}

// Cache operations
func (r *raffleRepository) cacheRaffle(ctx context.Context, raffle *models.Raffle) {
	if r.cache != nil && raffle.Status == models.RaffleStatusActive {
		cacheKey := utils.CacheRafflePrefix + raffle.ID.Hex()
		r.cache.Set(ctx, cacheKey, raffle, r.cacheTTL)
	}
}

func (r *raffleRepository) getRaffleFromCache(ctx context.Context, raffleID string) *models.Raffle {
	if r.cache == nil {
		return nil
	}

	var raffle models.Raffle
	if err := r.cache.Get(ctx, utils.CacheRafflePrefix+raffleID, &raffle); err != nil {
		return nil
	}

	return &raffle
}

func (r *raffleRepository) invalidateRaffleCache(ctx context.Context, raffleID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheRafflePrefix+raffleID)
	}
}
