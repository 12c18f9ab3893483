package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bijouterie/internal/auth"
	"bijouterie/internal/cart"
	"bijouterie/internal/checkout"
	"bijouterie/internal/config"
	"bijouterie/internal/idempotency"
	"bijouterie/internal/models"
	"bijouterie/internal/repository"
	"bijouterie/internal/server"
)

func newTestServer(t *testing.T) (*Client, repository.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemory()
	router, err := server.NewRouter(server.Deps{
		Config:   config.Config{CORSOrigins: []string{"*"}, UploadMaxBytes: 1 << 20},
		Store:    store,
		Checkout: checkout.NewService(store, checkout.Recompute),
		Issuer:   auth.NewIssuer("test-secret", time.Hour),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client()), store
}

func seedCatalog(t *testing.T, store repository.Store) (models.Collection, models.Product, models.Product) {
	t.Helper()
	ctx := context.Background()

	collection := models.Collection{Name: "Colliers", Description: "Necklaces", Slug: "colliers"}
	require.NoError(t, store.Collections.Create(ctx, &collection))

	pearl := models.Product{Name: "Pearl Necklace", Description: "d", Price: 100, Quantity: 3, CollectionID: collection.ID, Slug: "pearl-necklace-1"}
	require.NoError(t, store.Products.Create(ctx, &pearl))
	chain := models.Product{Name: "Gold Chain", Description: "d", Price: 50, Quantity: 5, CollectionID: collection.ID, Slug: "gold-chain-1"}
	require.NoError(t, store.Products.Create(ctx, &chain))

	return collection, pearl, chain
}

func customer() checkout.Customer {
	return checkout.Customer{Name: "Amina", Phone: "0600000000", Address: "1 rue de la Paix"}
}

func TestCatalogBrowsing(t *testing.T) {
	client, store := newTestServer(t)
	collection, pearl, _ := seedCatalog(t, store)
	ctx := context.Background()

	collections, err := client.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "colliers", collections[0].Slug)

	products, err := client.Products(ctx, collection.ID.Hex())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].Collection)
	assert.Equal(t, "Colliers", products[0].Collection.Name)

	product, err := client.Product(ctx, pearl.Slug)
	require.NoError(t, err)
	assert.Equal(t, pearl.ID, product.ID)

	_, err = client.Collection(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestCheckoutClearsCartOnSuccess(t *testing.T) {
	client, store := newTestServer(t)
	_, pearl, chain := seedCatalog(t, store)

	basket := cart.New(cart.NewMemoryStorage(), nil)
	basket.Add(cart.Item{ProductID: pearl.ID.Hex(), Name: pearl.Name, Price: pearl.Price}, 2)
	basket.Add(cart.Item{ProductID: chain.ID.Hex(), Name: chain.Name, Price: chain.Price}, 1)
	require.Equal(t, 250.0, basket.Total())

	order, err := client.Checkout(context.Background(), basket, customer())
	require.NoError(t, err)
	assert.Equal(t, 250.0, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, basket.IsEmpty())

	got, err := store.Products.GetByID(context.Background(), pearl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	client, store := newTestServer(t)
	_, pearl, _ := seedCatalog(t, store)

	basket := cart.New(cart.NewMemoryStorage(), nil)
	basket.Add(cart.Item{ProductID: pearl.ID.Hex(), Name: pearl.Name, Price: pearl.Price}, 5)

	_, err := client.Checkout(context.Background(), basket, customer())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "insufficient stock for Pearl Necklace", apiErr.Message)
	assert.Equal(t, 5, basket.Count())

	got, err := store.Products.GetByID(context.Background(), pearl.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestCheckoutEmptyCart(t *testing.T) {
	client, _ := newTestServer(t)
	_, err := client.Checkout(context.Background(), cart.New(cart.NewMemoryStorage(), nil), customer())
	assert.True(t, errors.Is(err, ErrEmptyCart))
}

func TestCheckoutSendsFreshIdempotencyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get(idempotency.Header))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"insufficient stock for Ring"}`))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, srv.Client())

	basket := cart.New(cart.NewMemoryStorage(), nil)
	basket.Add(cart.Item{ProductID: "65f000000000000000000000", Name: "Ring", Price: 10}, 1)

	for range 2 {
		_, err := client.Checkout(context.Background(), basket, customer())
		require.Error(t, err)
	}
	require.Len(t, keys, 2)
	assert.Len(t, keys[0], 36)
	assert.NotEqual(t, keys[0], keys[1])
	assert.Equal(t, 1, basket.Count())
}
