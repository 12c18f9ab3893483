package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
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
	"bijouterie/internal/models"
	"bijouterie/internal/repository"
	"bijouterie/internal/server"
	"bijouterie/internal/storefront"
)

func newShop(t *testing.T) (*shop, *bytes.Buffer, repository.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemory()
	router, err := server.NewRouter(server.Deps{
		Config:   config.Config{UploadMaxBytes: 1 << 20},
		Store:    store,
		Checkout: checkout.NewService(store, checkout.Recompute),
		Issuer:   auth.NewIssuer("test-secret", time.Hour),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	collection := models.Collection{Name: "Bagues", Description: "Rings", Slug: "bagues"}
	require.NoError(t, store.Collections.Create(ctx, &collection))
	ring := models.Product{Name: "Diamond Ring", Description: "d", Price: 100, Quantity: 2, CollectionID: collection.ID, Slug: "diamond-ring-1"}
	require.NoError(t, store.Products.Create(ctx, &ring))

	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &shop{
		client: storefront.NewClient(srv.URL, srv.Client()),
		cart:   cart.New(cart.NewMemoryStorage(), logger),
		out:    out,
	}, out, store
}

func TestShopBrowseAndCheckout(t *testing.T) {
	s, out, store := newShop(t)
	ctx := context.Background()

	require.NoError(t, s.run(ctx, "collections", nil))
	assert.Contains(t, out.String(), "bagues")

	out.Reset()
	require.NoError(t, s.run(ctx, "products", []string{"bagues"}))
	assert.Contains(t, out.String(), "Diamond Ring")
	assert.Contains(t, out.String(), "Bagues")

	require.NoError(t, s.run(ctx, "add", []string{"diamond-ring-1", "2"}))
	assert.Equal(t, 200.0, s.cart.Total())

	out.Reset()
	require.NoError(t, s.run(ctx, "checkout", []string{"-name", "Amina", "-phone", "0600000000", "-address", "1 rue de la Paix"}))
	assert.Contains(t, out.String(), "placed: 200.00 (pending)")
	assert.True(t, s.cart.IsEmpty())

	product, err := store.Products.GetBySlug(ctx, "diamond-ring-1")
	require.NoError(t, err)
	assert.Zero(t, product.Quantity)
}

func TestShopCartEditing(t *testing.T) {
	s, out, _ := newShop(t)
	ctx := context.Background()

	require.NoError(t, s.run(ctx, "add", []string{"diamond-ring-1"}))
	require.NoError(t, s.run(ctx, "set", []string{"diamond-ring-1", "5"}))
	assert.Equal(t, 5, s.cart.Count())

	require.NoError(t, s.run(ctx, "remove", []string{"diamond-ring-1"}))
	out.Reset()
	require.NoError(t, s.run(ctx, "cart", nil))
	assert.Equal(t, "cart is empty\n", out.String())

	assert.ErrorIs(t, s.run(ctx, "set", []string{"diamond-ring-1"}), errUsage)
	assert.Error(t, s.run(ctx, "dance", nil))
}

func TestShopCheckoutKeepsCartOnFailure(t *testing.T) {
	s, _, _ := newShop(t)
	ctx := context.Background()

	require.NoError(t, s.run(ctx, "add", []string{"diamond-ring-1", "5"}))
	err := s.run(ctx, "checkout", []string{"-name", "Amina", "-phone", "0600000000", "-address", "1 rue de la Paix"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Equal(t, 5, s.cart.Count())
}
