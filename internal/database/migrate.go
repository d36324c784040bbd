package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// recipeIndexes back the recency, ingredient and favorites queries
var recipeIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: FieldCreatedAt, Value: 1}}, Options: options.Index().SetName("createdAt_1")},
	{Keys: bson.D{{Key: FieldIngredients, Value: 1}}, Options: options.Index().SetName("ingredients_1")},
	{Keys: bson.D{{Key: "favorite", Value: 1}}, Options: options.Index().SetName("favorite_1")},
}

// Migrate ensures the collection indexes exist. Creating an existing index is a no-op.
func (s *MongoStore) Migrate(ctx context.Context) error {
	names, err := s.coll.Indexes().CreateMany(ctx, recipeIndexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	s.logger.Info("ensured recipe indexes", "indexes", names)
	return nil
}

// Migrate creates or updates the recipe tables
func (s *SQLStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&recipeRow{}, &ingredientRow{}, &reviewRow{}); err != nil {
		return fmt.Errorf("failed to migrate recipe tables: %w", err)
	}
	s.logger.Info("migrated recipe tables", "dialect", s.db.Dialector.Name())
	return nil
}

// RunMigrations prepares the store schema before the service starts
func RunMigrations(ctx context.Context, db Database, logger *slog.Logger) error {
	logger.Info("running store migrations")
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("store migrations complete")
	return nil
}
