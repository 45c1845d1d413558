package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CatalogCacheTTL is the time-to-live for cached catalog entities.
	CatalogCacheTTL = 24 * time.Hour

	catalogCacheKeyPrefix = "catalog"
)

// Entity kinds used as the middle segment of cache keys.
const (
	KindCategory    = "category"
	KindSubcategory = "subcategory"
	KindItem        = "item"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache miss")

// CatalogCache stores catalog entities as JSON values keyed by kind and id.
// Key format: "catalog:{kind}:{id}"
type CatalogCache struct {
	client *RedisClient
}

// NewCatalogCache creates a new CatalogCache backed by the given RedisClient.
func NewCatalogCache(r *RedisClient) *CatalogCache {
	return &CatalogCache{client: r}
}

// Get decodes the cached entity into dst. Returns ErrMiss when absent.
func (c *CatalogCache) Get(ctx context.Context, kind string, id uuid.UUID, dst any) error {
	raw, err := c.client.Client().Get(ctx, Key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("cache decode %s: %w", kind, err)
	}
	return nil
}

// Set writes v as JSON with a 24-hour TTL.
func (c *CatalogCache) Set(ctx context.Context, kind string, id uuid.UUID, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", kind, err)
	}
	if err := c.client.Client().Set(ctx, Key(kind, id), raw, CatalogCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes the cached entity.
func (c *CatalogCache) Delete(ctx context.Context, kind string, id uuid.UUID) error {
	if err := c.client.Client().Del(ctx, Key(kind, id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Key builds the Redis key: "catalog:{kind}:{id}"
func Key(kind string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", catalogCacheKeyPrefix, kind, id)
}
