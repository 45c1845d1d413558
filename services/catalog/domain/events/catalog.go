package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// Watermill topics published through the outbox when catalog entities are created.
const (
	TopicCategoryCreated    = "category.created"
	TopicSubcategoryCreated = "subcategory.created"
	TopicItemCreated        = "item.created"
)

// EventVersion is the schema version of every catalog event; bump on breaking changes.
const EventVersion = 1

// CategoryCreatedEvent is published in the same transaction that inserts a Category.
type CategoryCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SubcategoryCreatedEvent is published in the same transaction that inserts a
// Subcategory and appends it to its Category.
type SubcategoryCreatedEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Version       int       `json:"version"`
	SubcategoryID uuid.UUID `json:"subcategory_id"`
	CategoryID    uuid.UUID `json:"category_id"`
	Name          string    `json:"name"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ItemCreatedEvent is published in the same transaction that inserts an Item
// and appends it to its parents. Consumers use the parent ids to refresh
// cached back-references.
type ItemCreatedEvent struct {
	EventID       uuid.UUID  `json:"event_id"`
	Version       int        `json:"version"`
	ItemID        uuid.UUID  `json:"item_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	SubcategoryID *uuid.UUID `json:"subcategory_id,omitempty"`
	Name          string     `json:"name"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// CategoryCreated builds the event for a freshly inserted c.
func CategoryCreated(c *models.Category) CategoryCreatedEvent {
	return CategoryCreatedEvent{
		EventID:    uuid.New(),
		Version:    EventVersion,
		CategoryID: c.ID,
		Name:       c.Name,
		OccurredAt: c.CreatedAt,
	}
}

// SubcategoryCreated builds the event for a freshly inserted s.
func SubcategoryCreated(s *models.Subcategory) SubcategoryCreatedEvent {
	return SubcategoryCreatedEvent{
		EventID:       uuid.New(),
		Version:       EventVersion,
		SubcategoryID: s.ID,
		CategoryID:    s.CategoryID,
		Name:          s.Name,
		OccurredAt:    s.CreatedAt,
	}
}

// ItemCreated builds the event for a freshly inserted i.
func ItemCreated(i *models.Item) ItemCreatedEvent {
	return ItemCreatedEvent{
		EventID:       uuid.New(),
		Version:       EventVersion,
		ItemID:        i.ID,
		CategoryID:    i.CategoryID,
		SubcategoryID: i.SubcategoryID,
		Name:          i.Name,
		OccurredAt:    i.CreatedAt,
	}
}
