// Package subscribers consumes catalog events published through the outbox.
package subscribers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/catalog/pkg/cache"
	pkgevents "github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
)

// Subscriber is the consuming side of the event bus. *events.EventBus implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, h pkgevents.Handler) (<-chan error, error)
}

// CacheWarmer loads freshly created entities, and the parents whose
// back-references they changed, into the read cache.
// Handlers are idempotent; the bus redelivers on failure.
type CacheWarmer struct {
	categories    repositories.CategoryRepository
	subcategories repositories.SubcategoryRepository
	items         repositories.ItemRepository
	cache         appsvcs.EntityCache
	log           logger.Logger
}

// NewCacheWarmer returns a CacheWarmer reading from the given repositories.
func NewCacheWarmer(d appsvcs.Deps) *CacheWarmer {
	return &CacheWarmer{
		categories:    d.Categories,
		subcategories: d.Subcategories,
		items:         d.Items,
		cache:         d.Cache,
		log:           d.Logger,
	}
}

// Register subscribes every handler and drains the subscriber error channels
// into the log until they close. It returns the subscribed topics.
func (w *CacheWarmer) Register(ctx context.Context, bus Subscriber) ([]string, error) {
	handlers := map[string]pkgevents.Handler{
		events.TopicCategoryCreated:    w.CategoryCreated,
		events.TopicSubcategoryCreated: w.SubcategoryCreated,
		events.TopicItemCreated:        w.ItemCreated,
	}
	topics := make([]string, 0, len(handlers))
	for _, topic := range []string{events.TopicCategoryCreated, events.TopicSubcategoryCreated, events.TopicItemCreated} {
		errCh, err := bus.Subscribe(ctx, topic, handlers[topic])
		if err != nil {
			return topics, err
		}
		go func(topic string) {
			for err := range errCh {
				w.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		topics = append(topics, topic)
	}
	return topics, nil
}

// CategoryCreated handles category.created.
func (w *CacheWarmer) CategoryCreated(ctx context.Context, msg *message.Message) error {
	var evt events.CategoryCreatedEvent
	if !w.decode(ctx, msg, &evt) {
		return nil
	}
	return w.warmCategory(ctx, evt.CategoryID)
}

// SubcategoryCreated handles subcategory.created. The parent category is
// refreshed because its subcategory list grew.
func (w *CacheWarmer) SubcategoryCreated(ctx context.Context, msg *message.Message) error {
	var evt events.SubcategoryCreatedEvent
	if !w.decode(ctx, msg, &evt) {
		return nil
	}
	if err := w.warmSubcategory(ctx, evt.SubcategoryID); err != nil {
		return err
	}
	return w.warmCategory(ctx, evt.CategoryID)
}

// ItemCreated handles item.created and refreshes the item's parents.
func (w *CacheWarmer) ItemCreated(ctx context.Context, msg *message.Message) error {
	var evt events.ItemCreatedEvent
	if !w.decode(ctx, msg, &evt) {
		return nil
	}
	if err := w.warm(ctx, cache.KindItem, evt.ItemID, func(ctx context.Context, id uuid.UUID) (any, error) {
		return w.items.GetByID(ctx, id)
	}); err != nil {
		return err
	}
	if evt.SubcategoryID != nil {
		if err := w.warmSubcategory(ctx, *evt.SubcategoryID); err != nil {
			return err
		}
	}
	if evt.CategoryID != nil {
		return w.warmCategory(ctx, *evt.CategoryID)
	}
	return nil
}

// decode reports false for messages that can never be processed. Those are
// logged and acked rather than retried.
func (w *CacheWarmer) decode(ctx context.Context, msg *message.Message, dst any) bool {
	if err := pkgevents.Decode(msg, events.EventVersion, dst); err != nil {
		w.log.ErrorContext(ctx, "dropping undecodable event", "message_id", msg.UUID, "error", err)
		return false
	}
	return true
}

func (w *CacheWarmer) warmCategory(ctx context.Context, id uuid.UUID) error {
	return w.warm(ctx, cache.KindCategory, id, func(ctx context.Context, id uuid.UUID) (any, error) {
		return w.categories.GetByID(ctx, id)
	})
}

func (w *CacheWarmer) warmSubcategory(ctx context.Context, id uuid.UUID) error {
	return w.warm(ctx, cache.KindSubcategory, id, func(ctx context.Context, id uuid.UUID) (any, error) {
		return w.subcategories.GetByID(ctx, id)
	})
}

// warm loads one entity and caches it. A missing row is not retried. Cache
// write failures are logged only; warming is best-effort.
func (w *CacheWarmer) warm(ctx context.Context, kind string, id uuid.UUID, load func(context.Context, uuid.UUID) (any, error)) error {
	v, err := load(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		w.log.WarnContext(ctx, "event refers to missing entity", "kind", kind, "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s %s: %w", kind, id, err)
	}
	if w.cache == nil {
		return nil
	}
	if err := w.cache.Set(ctx, kind, id, v); err != nil {
		w.log.WarnContext(ctx, "cache warm failed", "kind", kind, "id", id, "error", err)
		return nil
	}
	w.log.DebugContext(ctx, "cache warmed", "kind", kind, "id", id)
	return nil
}
