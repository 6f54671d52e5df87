package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations(DriverSQLite))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_SeedsFiveProductsInOrder(t *testing.T) {
	s := setupSQLite(t)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 5)
	for i, p := range products {
		assert.Equal(t, int64(i+1), p.ID)
	}
	assert.Equal(t, 9.99, products[0].Price)
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	s := setupSQLite(t)
	require.NoError(t, s.RunMigrations(DriverSQLite))

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 5)
}

func TestSQLite_MergeUpdateToZeroAndDelete(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	first, merged, err := s.AddToCart(ctx, 1, 2, 1, time.Now())
	require.NoError(t, err)
	assert.False(t, merged)

	second, merged, err := s.AddToCart(ctx, 1, 2, 3, time.Now())
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.Qty)

	lines, err := s.ListCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Qty)

	n, err := s.UpdateCartQty(ctx, first.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	lines, err = s.ListCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1, "zero quantity must not remove the line")
	assert.Equal(t, 0, lines[0].Qty)

	n, err = s.RemoveFromCart(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.RemoveFromCart(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLite_CartIsPerUserAndJoinDropsUnknownProducts(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	_, _, err := s.AddToCart(ctx, 1, 1, 2, time.Now())
	require.NoError(t, err)
	_, _, err = s.AddToCart(ctx, 1, 9999, 1, time.Now())
	require.NoError(t, err)
	_, _, err = s.AddToCart(ctx, 2, 3, 1, time.Now())
	require.NoError(t, err)

	lines, err := s.ListCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ProductID)

	n, err := s.ClearCartForUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.ClearCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	lines, err = s.ListCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSQLite_ProductsByIDsSkipsUnknown(t *testing.T) {
	s := setupSQLite(t)

	products, err := s.ProductsByIDs(context.Background(), []int64{4, 9999, 1})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(4), products[1].ID)
}

func TestSQLite_Users(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	created, err := s.FindOrCreateUser(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	again, err := s.FindOrCreateUser(ctx, "", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Ada", again.Name.String)

	got, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ada@example.com", got.Email)

	missing, err := s.GetUser(ctx, created.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_ClearCartEmptiesEveryUser(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	users := []int64{1, 2, 7}
	for i, u := range users {
		_, _, err := s.AddToCart(ctx, u, int64(i+1), 2, time.Now())
		require.NoError(t, err)
	}

	n, err := s.ClearCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(users)), n)

	for _, u := range append(users, 42) {
		lines, err := s.ListCart(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, lines, "user %d", u)
	}
}
