package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bebidaspos/internal/dto"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by PriceCache.Get when the barcode is not cached.
var ErrCacheMiss = errors.New("cache miss")

const priceCacheTTL = 30 * time.Minute

// PriceCache keeps price lookups by barcode in Redis. A nil *PriceCache is
// valid and behaves as an always-empty cache, which is how the process runs
// without REDIS_URL.
type PriceCache struct {
	rdb     *redis.Client
	baseTTL time.Duration
}

func NewPriceCache(rdb *redis.Client) *PriceCache {
	if rdb == nil {
		return nil
	}
	return &PriceCache{rdb: rdb, baseTTL: priceCacheTTL}
}

func (c *PriceCache) Get(ctx context.Context, barcode string) (*dto.PriceLookupResponse, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	data, err := c.rdb.Get(ctx, priceKey(barcode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var resp dto.PriceLookupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal price failed: %w", err)
	}
	return &resp, nil
}

func (c *PriceCache) Set(ctx context.Context, barcode string, resp *dto.PriceLookupResponse) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal price failed: %w", err)
	}
	// Jitter spreads expiry of entries cached in the same burst.
	ttl := c.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := c.rdb.Set(ctx, priceKey(barcode), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete drops the given barcodes. Unknown keys are ignored.
func (c *PriceCache) Delete(ctx context.Context, barcodes ...string) error {
	if c == nil || len(barcodes) == 0 {
		return nil
	}
	keys := make([]string, len(barcodes))
	for i, b := range barcodes {
		keys[i] = priceKey(b)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func priceKey(barcode string) string {
	return "precio:" + barcode
}
