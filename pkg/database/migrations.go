package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	if err := m.createMigrationsCollection(); err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			if err := migration.Up(m.db); err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			if err := m.updateVersion(migration.Version); err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create raffles collection with indexes",
			Up: func(db *mongo.Database) error {
				return createRaffleIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("raffles").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create raffle_tickets collection with indexes",
			Up: func(db *mongo.Database) error {
				return createTicketIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("raffle_tickets").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create raffle_prizes collection with indexes",
			Up: func(db *mongo.Database) error {
				return createPrizeIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("raffle_prizes").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create raffle_winners collection with indexes",
			Up: func(db *mongo.Database) error {
				return createWinnerIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("raffle_winners").Drop(context.Background())
			},
		},
	}
}

func createRaffleIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("raffles")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_lower", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "draw_date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createTicketIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("raffle_tickets")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Correctness backstop for concurrent entry retries: a retried
			// batch repeats the same source tuple and sequence numbers, so
			// its inserts collide with the first batch. Partial so tickets
			// without a source reference (promotional grants) don't collide.
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "raffle_id", Value: 1},
				{Key: "source_type", Value: 1},
				{Key: "source_reference", Value: 1},
				{Key: "source_seq", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"source_reference": bson.M{"$gt": ""}}),
		},
		{
			Keys: bson.D{{Key: "raffle_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "raffle_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "verification_code", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createPrizeIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("raffle_prizes")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "raffle_id", Value: 1}, {Key: "tier", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createWinnerIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("raffle_winners")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "prize_id", Value: 1}, {Key: "ticket_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "raffle_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "claim_deadline", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "verification_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
