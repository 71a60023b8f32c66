package infra

import (
	"context"
	"testing"
	"time"

	"bebidaspos/internal/dto"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*PriceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPriceCache(rdb), mr
}

func TestPriceCache_SetGetDelete(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	stock := 4

	_, err := cache.Get(ctx, "789")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "789", &dto.PriceLookupResponse{
		Name: "Cerveja", Barcode: "789", SellingPrice: decimal.RequireFromString("4.50"), AvailableStock: &stock,
	}))
	ttl := mr.TTL("precio:789")
	assert.GreaterOrEqual(t, ttl, 30*time.Minute)
	assert.Less(t, ttl, 35*time.Minute)

	got, err := cache.Get(ctx, "789")
	require.NoError(t, err)
	assert.Equal(t, "Cerveja", got.Name)
	assert.Equal(t, "4.5", got.SellingPrice.String())
	require.NotNil(t, got.AvailableStock)
	assert.Equal(t, 4, *got.AvailableStock)

	require.NoError(t, cache.Delete(ctx, "789", "unknown"))
	_, err = cache.Get(ctx, "789")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestPriceCache_CorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("precio:1", "{not json"))

	_, err := cache.Get(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestPriceCache_NilIsAlwaysEmpty(t *testing.T) {
	var cache *PriceCache
	ctx := context.Background()
	assert.Nil(t, NewPriceCache(nil))

	_, err := cache.Get(ctx, "1")
	require.ErrorIs(t, err, ErrCacheMiss)
	require.NoError(t, cache.Set(ctx, "1", &dto.PriceLookupResponse{}))
	require.NoError(t, cache.Delete(ctx, "1"))
}
