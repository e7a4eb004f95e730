// Package cache provides a Redis read-through cache for the subscription
// catalog. Tiers change only through admin edits, which invalidate the
// cached entry, so lookups on the placement path rarely reach the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "bazaar:tier:"

// TierCache stores tiers as JSON under one key per tier name.
type TierCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewTierCache connects to addr and verifies the connection.
func NewTierCache(ctx context.Context, addr string, ttl time.Duration) (*TierCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &TierCache{rdb: rdb, ttl: ttl}, nil
}

type cachedTier struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	MaxShops          int    `json:"max_shops"`
	MaxShelvesPerShop int    `json:"max_shelves_per_shop"`
	MaxItemsPerShelf  int    `json:"max_items_per_shelf"`
	IsActive          bool   `json:"is_active"`
}

// Get returns the cached tier. The boolean is false on a miss.
func (c *TierCache) Get(ctx context.Context, name string) (*domain.SubscriptionTier, bool, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+name).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ct cachedTier
	if err := json.Unmarshal(raw, &ct); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		return nil, false, nil
	}
	return &domain.SubscriptionTier{
		Name:              ct.Name,
		DisplayName:       ct.DisplayName,
		MaxShops:          ct.MaxShops,
		MaxShelvesPerShop: ct.MaxShelvesPerShop,
		MaxItemsPerShelf:  ct.MaxItemsPerShelf,
		IsActive:          ct.IsActive,
	}, true, nil
}

// Set stores the tier with the configured TTL.
func (c *TierCache) Set(ctx context.Context, tier domain.SubscriptionTier) error {
	raw, err := json.Marshal(cachedTier{
		Name:              tier.Name,
		DisplayName:       tier.DisplayName,
		MaxShops:          tier.MaxShops,
		MaxShelvesPerShop: tier.MaxShelvesPerShop,
		MaxItemsPerShelf:  tier.MaxItemsPerShelf,
		IsActive:          tier.IsActive,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+tier.Name, raw, c.ttl).Err()
}

// Invalidate drops the cached entry for a tier.
func (c *TierCache) Invalidate(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, keyPrefix+name).Err()
}

// Close releases the Redis connection pool.
func (c *TierCache) Close() error {
	return c.rdb.Close()
}
