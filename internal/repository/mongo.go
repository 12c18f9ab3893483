package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const queryTimeout = 5 * time.Second

// NewMongo builds a Store backed by db. With transactions disabled (standalone
// mongod) the Transactor runs its function directly and reports non-atomic.
func NewMongo(db *mongo.Database, transactions bool) Store {
	return Store{
		Driver:      "mongo",
		Collections: &mongoCollections{coll: db.Collection("collections")},
		Products:    &mongoProducts{coll: db.Collection("products")},
		Orders:      &mongoOrders{coll: db.Collection("orders")},
		Users:       &mongoUsers{coll: db.Collection("users")},
		Tx:          &mongoTransactor{client: db.Client(), enabled: transactions},
		Ping: func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return db.Client().Ping(checkCtx, readpref.Primary())
		},
	}
}

type mongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

func (t *mongoTransactor) Atomic() bool {
	return t.enabled
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// withTimeout bounds a single query. The session, if any, travels with ctx.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
