package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// Transactor groups repository calls. Every call made with the context passed
// to fn joins the same transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CategoryRepository is the persistence interface for Category.
// The domain layer owns this interface; infrastructure implements it.
type CategoryRepository interface {
	// Save inserts c and publishes CategoryCreatedEvent.
	// Returns ErrCategoryAlreadyExists on a name collision.
	Save(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// FindByName is a case-insensitive exact match.
	FindByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	// Update persists name, description and tax settings.
	Update(ctx context.Context, c *models.Category) error
	AppendSubcategory(ctx context.Context, categoryID, subcategoryID uuid.UUID) error
	AppendItem(ctx context.Context, categoryID, itemID uuid.UUID) error
}

// SubcategoryRepository is the persistence interface for Subcategory.
type SubcategoryRepository interface {
	// Save inserts s and publishes SubcategoryCreatedEvent.
	// Returns ErrSubcategoryAlreadyExists on a name collision within the parent.
	Save(ctx context.Context, s *models.Subcategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
	// FindByName matches case-insensitively across all categories and
	// returns the oldest match.
	FindByName(ctx context.Context, name string) (*models.Subcategory, error)
	// FindByNameInCategory matches case-insensitively within one category.
	FindByNameInCategory(ctx context.Context, categoryID uuid.UUID, name string) (*models.Subcategory, error)
	List(ctx context.Context) ([]*models.Subcategory, error)
	// ListByIDs returns the subcategories in the order of ids, skipping unknown ids.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Subcategory, error)
	Update(ctx context.Context, s *models.Subcategory) error
	AppendItem(ctx context.Context, subcategoryID, itemID uuid.UUID) error
}

// ItemRepository is the persistence interface for Item.
type ItemRepository interface {
	// Save inserts i and publishes ItemCreatedEvent.
	// Returns ErrItemAlreadyExists on a name collision.
	Save(ctx context.Context, i *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindByName(ctx context.Context, name string) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Item, error)
	// ListByIDs returns the items in the order of ids, skipping unknown ids.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Item, error)
	// Search is a case-insensitive substring match on name. The fragment is
	// matched literally.
	Search(ctx context.Context, fragment string) ([]*models.Item, error)
	Update(ctx context.Context, i *models.Item) error
}

// ImageIndex reports which stored image keys are referenced by catalog rows.
type ImageIndex interface {
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}
