package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"equiprent/internal/migrations/mongo/validators"
	ordersrepository "equiprent/internal/orders/repository"
	reservationsrepository "equiprent/internal/reservations/repository"
	"equiprent/pkg/logger"
)

var (
	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "equipmentType", Value: 1},
			{Key: "equipmentId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "orderId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: -1},
		}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}},
	}

	OrdersIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "serviceType", Value: 1},
			{Key: "equipmentId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "orderDate", Value: 1},
		}},
		{Keys: bson.D{{Key: "customerPhone", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	// Expired locks are reaped by Mongo; Acquire also clears them on contention.
	ReservationLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDefinition struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() []CollectionDefinition {
	return []CollectionDefinition{
		{
			Name:      reservationsrepository.CollectionName,
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		{
			Name:      ordersrepository.CollectionName,
			Indexes:   OrdersIndexes,
			Validator: validators.OrderValidator,
		},
		{
			Name:      reservationsrepository.LockCollectionName,
			Indexes:   ReservationLocksIndexes,
			Validator: validators.ReservationLockValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
