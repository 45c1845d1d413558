package app

import (
	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
)

// Application holds the shared infrastructure handed to every bounded context
// when routes and subscribers are registered.
//
// Logging: use the context methods so trace_id, span_id and request_id are
// attached automatically:
//
//	app.Logger.InfoContext(ctx, "category created", "category_id", id)
//
// Cache may be nil; services then read straight from the database.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient
	Cache    *cache.CatalogCache
	Images   storage.ImageStore
}
