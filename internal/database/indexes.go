package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureCollectionIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "collections", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
	})
}

func EnsureProductIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "products", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "collectionId", Value: 1}},
			Options: options.Index().SetName("collectionId_index"),
		},
	})
}

func EnsureUserIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	})
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "orders", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("status_createdAt"),
		},
	})
}

// EnsureIndexes creates every index the stores rely on, logging and returning
// the first failure.
func EnsureIndexes(db *mongo.Database) error {
	for _, ensure := range []func(*mongo.Database) error{
		EnsureCollectionIndexes,
		EnsureProductIndexes,
		EnsureUserIndexes,
		EnsureOrderIndexes,
	} {
		if err := ensure(db); err != nil {
			return err
		}
	}
	return nil
}

func ensureIndexes(db *mongo.Database, collection string, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		slog.Error("index creation failed", "collection", collection, "err", err)
		return err
	}
	slog.Info("indexes ensured", "collection", collection, "indexes", names)
	return nil
}
