package services

import (
	"time"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/postgres"
)

// Deps are the collaborators of the catalog application services.
type Deps struct {
	Tx            repositories.Transactor
	Categories    repositories.CategoryRepository
	Subcategories repositories.SubcategoryRepository
	Items         repositories.ItemRepository
	Index         repositories.ImageIndex
	Images        storage.ImageStore
	Cache         EntityCache // optional
	Logger        logger.Logger
	JanitorMinAge time.Duration

	counters counters
}

// Services is the application-layer service container for the catalog.
type Services struct {
	Category    *CategoryService
	Subcategory *SubcategoryService
	Item        *ItemService
	Janitor     *ImageJanitor
}

// New wires the catalog services on PostgreSQL with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	var bus postgres.Publisher
	if a.EventBus != nil {
		bus = a.EventBus
	}
	d := Deps{
		Tx:            a.Db,
		Categories:    postgres.NewCategoryRepository(a.Db, bus),
		Subcategories: postgres.NewSubcategoryRepository(a.Db, bus),
		Items:         postgres.NewItemRepository(a.Db, bus),
		Index:         postgres.NewImageIndex(a.Db),
		Images:        a.Images,
		Logger:        a.Logger,
	}
	if a.Cache != nil {
		d.Cache = a.Cache
	}
	if a.Config != nil {
		d.JanitorMinAge = a.Config.JanitorMinAge
	}
	return NewServices(d)
}

// NewServices builds every service from d.
func NewServices(d Deps) *Services {
	d.counters = newCounters()
	return &Services{
		Category:    NewCategoryService(d),
		Subcategory: NewSubcategoryService(d),
		Item:        NewItemService(d),
		Janitor:     NewImageJanitor(d),
	}
}
