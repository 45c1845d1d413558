package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/memory"
)

// fakeCache is an in-process EntityCache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, kind string, id uuid.UUID, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[cache.Key(kind, id)]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, kind string, id uuid.UUID, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[cache.Key(kind, id)] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, kind string, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, cache.Key(kind, id))
	return nil
}

func (c *fakeCache) has(kind string, id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[cache.Key(kind, id)]
	return ok
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	images *storage.MemoryStore
	cache  *fakeCache
	svc    *Services
}

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	images := storage.NewMemoryStore()
	fc := newFakeCache()
	return &fixture{
		ctx:    context.Background(),
		store:  store,
		images: images,
		cache:  fc,
		svc: NewServices(Deps{
			Tx:            store,
			Categories:    store.Categories(),
			Subcategories: store.Subcategories(),
			Items:         store.Items(),
			Index:         store,
			Images:        images,
			Cache:         fc,
			Logger:        nopLogger(),
			JanitorMinAge: time.Hour,
		}),
	}
}

// upload stores a placeholder image and returns its key.
func (f *fixture) upload(t *testing.T) string {
	t.Helper()
	key := storage.NewKey(".png", time.Now())
	_, err := f.images.Put(f.ctx, key, strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	return key
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
