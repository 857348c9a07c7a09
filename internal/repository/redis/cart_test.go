package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexplus/storefront/internal/domain"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		SessionID: "sess-001",
		Items: []domain.CartItem{
			{
				ProductID: "prod-1",
				VariantID: "40",
				Name:      "Air Runner",
				Brand:     "Apex",
				Price:     2500,
				Quantity:  2,
			},
		},
		UpdatedAt: now,
	}
}

func TestCartRepository_SaveAndGet(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	require.NoError(t, repo.Save(ctx, cart))

	got, err := repo.Get(ctx, "sess-001")
	require.NoError(t, err)

	assert.Equal(t, cart.SessionID, got.SessionID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod-1", got.Items[0].ProductID)
	assert.Equal(t, int64(5000), got.TotalAmount())
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart, err := repo.Get(context.Background(), "unknown-session")
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCart()))

	ttl := mr.TTL("cart:sess-001")
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestCartRepository_Get_RefreshesTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCart()))

	mr.FastForward(10 * time.Hour)
	require.Equal(t, 14*time.Hour, mr.TTL("cart:sess-001"))

	_, err := repo.Get(ctx, "sess-001")
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, mr.TTL("cart:sess-001"))
}

func TestCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCart()))
	require.True(t, mr.Exists("cart:sess-001"))

	require.NoError(t, repo.Delete(ctx, "sess-001"))
	assert.False(t, mr.Exists("cart:sess-001"))

	// Deleting an absent cart is not an error.
	assert.NoError(t, repo.Delete(ctx, "sess-001"))
}
