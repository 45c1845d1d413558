package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/logger"
)

// EntityCache is the read-model cache consulted on id lookups.
// *cache.CatalogCache implements it.
type EntityCache interface {
	Get(ctx context.Context, kind string, id uuid.UUID, dst any) error
	Set(ctx context.Context, kind string, id uuid.UUID, v any) error
	Delete(ctx context.Context, kind string, id uuid.UUID) error
}

// cacheLayer makes every cache failure non-fatal: errors are logged and the
// database stays the source of truth.
type cacheLayer struct {
	c   EntityCache
	log logger.Logger
}

func readThrough[T any](ctx context.Context, cl cacheLayer, kind string, id uuid.UUID, load func(context.Context, uuid.UUID) (*T, error)) (*T, error) {
	if cl.c != nil {
		var cached T
		err := cl.c.Get(ctx, kind, id, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			cl.log.WarnContext(ctx, "cache read failed", "kind", kind, "id", id, "error", err)
		}
	}

	v, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	cl.set(ctx, kind, id, v)
	return v, nil
}

func (cl cacheLayer) set(ctx context.Context, kind string, id uuid.UUID, v any) {
	if cl.c == nil {
		return
	}
	if err := cl.c.Set(ctx, kind, id, v); err != nil {
		cl.log.WarnContext(ctx, "cache write failed", "kind", kind, "id", id, "error", err)
	}
}

func (cl cacheLayer) invalidate(ctx context.Context, kind string, ids ...uuid.UUID) {
	if cl.c == nil {
		return
	}
	for _, id := range ids {
		if err := cl.c.Delete(ctx, kind, id); err != nil {
			cl.log.WarnContext(ctx, "cache invalidation failed", "kind", kind, "id", id, "error", err)
		}
	}
}
