package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateTTL = 12 * time.Hour

// RateCache stores resolved exchange rates in Redis so repeated invoice
// views do not hit the upstream rate provider.
// Key format: fx:<CURRENCY>:<date>
type RateCache struct {
	client *redis.Client
}

// NewRateCache creates a RateCache wrapping the given Redis client.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{client: client}
}

// Get returns the cached rate for the currency/date pair, with ok=false on
// a cache miss.
func (c *RateCache) Get(ctx context.Context, currency, date string) (float64, bool, error) {
	v, err := c.client.Get(ctx, c.key(currency, date)).Float64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("rate cache get: %w", err)
	}
	return v, true, nil
}

// Set records a resolved rate (expires after rateTTL).
func (c *RateCache) Set(ctx context.Context, currency, date string, rate float64) error {
	return c.client.Set(ctx, c.key(currency, date), rate, rateTTL).Err()
}

func (c *RateCache) key(currency, date string) string {
	return fmt.Sprintf("fx:%s:%s", strings.ToUpper(currency), date)
}
