package database

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mu     sync.Mutex
	client *mongo.Client
)

// Connect returns the process-wide client, dialing on first use. A failed
// attempt is not cached so the next caller retries.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		return client, nil
	}

	if strings.Contains(uri, "mongodb.net") {
		slog.Info("connecting to MongoDB", "target", "atlas")
	} else {
		slog.Info("connecting to MongoDB", "target", "local")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		slog.Error("MongoDB connection error", "err", err)
		return nil, err
	}
	if err := c.Ping(connectCtx, readpref.Primary()); err != nil {
		slog.Error("MongoDB ping failed", "err", err)
		_ = c.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("MongoDB connected")
	client = c
	return client, nil
}

// Disconnect closes the shared client if one was opened.
func Disconnect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client = nil
	return err
}
