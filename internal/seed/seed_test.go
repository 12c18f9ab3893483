package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bijouterie/internal/auth"
	"bijouterie/internal/repository"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

func TestAdminCreateThenForceReset(t *testing.T) {
	store := repository.NewMemory()
	ctx := context.Background()

	result, err := Admin(ctx, store.Users, " Admin@Bijouterie.Local", "1234", false)
	require.NoError(t, err)
	assert.Equal(t, AdminCreated, result)

	user, err := auth.Authenticate(ctx, store.Users, "admin@bijouterie.local", "1234")
	require.NoError(t, err)
	assert.True(t, user.MustChangePassword)
	assert.True(t, user.IsAdmin)

	require.NoError(t, store.Users.UpdatePassword(ctx, user.ID, "changed", false))

	result, err = Admin(ctx, store.Users, "admin@bijouterie.local", "1234", false)
	require.NoError(t, err)
	assert.Equal(t, AdminExists, result)

	result, err = Admin(ctx, store.Users, "admin@bijouterie.local", "1234", true)
	require.NoError(t, err)
	assert.Equal(t, AdminReset, result)

	user, err = auth.Authenticate(ctx, store.Users, "admin@bijouterie.local", "1234")
	require.NoError(t, err)
	assert.True(t, user.MustChangePassword)
}

func TestAdminRequiresCredentials(t *testing.T) {
	_, err := Admin(context.Background(), repository.NewMemory().Users, "", "1234", false)
	assert.Error(t, err)
}

func TestCatalogReplacesExistingData(t *testing.T) {
	store := repository.NewMemory()
	ctx := context.Background()

	_, _, err := Catalog(ctx, store)
	require.NoError(t, err)
	collections, products, err := Catalog(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 4, collections)
	assert.Equal(t, 9, products)

	count, err := store.Products.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, count)

	rings, err := store.Collections.GetBySlug(ctx, "bagues-de-fiancailles")
	require.NoError(t, err)
	list, err := store.Products.List(ctx, repository.ProductFilter{CollectionID: &rings.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, p := range list {
		assert.False(t, strings.ContainsAny(p.Slug, "ÉéA "), p.Slug)
	}
}
