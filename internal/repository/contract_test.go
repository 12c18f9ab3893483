package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bijouterie/internal/database"
	"bijouterie/internal/models"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemory() })
}

func TestMongoStoreContract(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	var n atomic.Int64
	runStoreContract(t, func(t *testing.T) Store {
		db := client.Database(fmt.Sprintf("bijouterie_test_%d", n.Add(1)))
		require.NoError(t, database.EnsureIndexes(db))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })
		return NewMongo(db, true)
	})
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("decrement stock", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		p := seedProduct(t, store, "ring", 3)

		require.NoError(t, store.Products.DecrementStock(ctx, p.ID, 2))
		assert.ErrorIs(t, store.Products.DecrementStock(ctx, p.ID, 2), ErrInsufficientStock)
		assert.ErrorIs(t, store.Products.DecrementStock(ctx, primitive.NewObjectID(), 1), ErrNotFound)
		assert.ErrorIs(t, store.Products.IncrementStock(ctx, primitive.NewObjectID(), 1), ErrNotFound)

		got, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Quantity)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		p := seedProduct(t, store, "bracelet", 4)
		require.True(t, store.Tx.Atomic())

		boom := errors.New("later item failed")
		err := store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := store.Products.DecrementStock(ctx, p.ID, 3); err != nil {
				return err
			}
			order := models.Order{CustomerName: "Amina", Status: models.StatusPending, Total: 300}
			if err := store.Orders.Create(ctx, &order); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Quantity)

		count, err := store.Orders.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("revenue", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		var last models.Order
		for _, o := range []struct {
			status models.OrderStatus
			total  float64
		}{
			{models.StatusConfirmed, 100},
			{models.StatusPaid, 50.5},
			{models.StatusPending, 30},
			{models.StatusCancelled, 20},
		} {
			last = models.Order{CustomerName: "Amina", Status: o.status, Total: o.total}
			require.NoError(t, store.Orders.Create(ctx, &last))
		}

		revenue, err := store.Orders.Revenue(ctx, models.RevenueStatuses)
		require.NoError(t, err)
		assert.Equal(t, 150.5, revenue)

		since := last.CreatedAt.Add(-time.Hour)
		for _, period := range []Period{PeriodDay, PeriodMonth, PeriodYear} {
			series, err := store.Orders.RevenueSeries(ctx, models.RevenueStatuses, since, period)
			require.NoError(t, err)
			require.Len(t, series, 1, period.Layout())
			assert.Equal(t, last.CreatedAt.UTC().Format(period.Layout()), series[0].ID)
			assert.Equal(t, 150.5, series[0].Total)
		}

		series, err := store.Orders.RevenueSeries(ctx, models.RevenueStatuses, last.CreatedAt.Add(time.Hour), PeriodDay)
		require.NoError(t, err)
		assert.Empty(t, series)
	})

	t.Run("duplicates", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := models.Collection{Name: "Bagues", Description: "Rings", Slug: "bagues"}
		require.NoError(t, store.Collections.Create(ctx, &first))
		again := models.Collection{Name: "Bagues ", Description: "Rings", Slug: "bagues"}
		assert.ErrorIs(t, store.Collections.Create(ctx, &again), ErrDuplicate)

		seedProduct(t, store, "solitaire-1", 1)
		dup := models.Product{Name: "x", Description: "d", CollectionID: first.ID, Slug: "solitaire-1"}
		assert.ErrorIs(t, store.Products.Create(ctx, &dup), ErrDuplicate)

		user := models.User{Email: "admin@bijouterie.local", PasswordHash: "x"}
		require.NoError(t, store.Users.Create(ctx, &user))
		other := models.User{Email: "admin@bijouterie.local", PasswordHash: "y"}
		assert.ErrorIs(t, store.Users.Create(ctx, &other), ErrDuplicate)
	})

	t.Run("not found", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Collections.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Products.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Orders.UpdateStatus(ctx, primitive.NewObjectID(), models.StatusPaid)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Orders.Delete(ctx, primitive.NewObjectID()), ErrNotFound)
		_, err = store.Users.FindByEmail(ctx, "nobody@bijouterie.local")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
