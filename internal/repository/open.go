package repository

import (
	"context"
	"log/slog"

	"bijouterie/internal/config"
	"bijouterie/internal/database"
)

// Open returns the store selected by cfg.StoreDriver. For MongoDB it
// connects through the shared client and makes sure the indexes exist.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		slog.Info("using in-memory store")
		return NewMemory(), nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return Store{}, err
	}

	db := client.Database(cfg.DBName)
	slog.Info("MongoDB connected", "database", db.Name(), "transactions", cfg.MongoTransactions)

	if err := database.EnsureIndexes(db); err != nil {
		slog.Warn("index warning", "err", err)
	}
	return NewMongo(db, cfg.MongoTransactions), nil
}
