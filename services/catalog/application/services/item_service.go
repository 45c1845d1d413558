package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/storage"
	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	domainsvcs "github.com/ghuser/catalog/services/catalog/domain/services"
)

// ItemService orchestrates Items, linking each to its optional parents.
type ItemService struct {
	tx            repositories.Transactor
	categories    repositories.CategoryRepository
	subcategories repositories.SubcategoryRepository
	items         repositories.ItemRepository
	images        storage.ImageStore
	cache         cacheLayer
	log           logger.Logger
	counters      counters
}

func NewItemService(d Deps) *ItemService {
	return &ItemService{
		tx:            d.Tx,
		categories:    d.Categories,
		subcategories: d.Subcategories,
		items:         d.Items,
		images:        d.Images,
		cache:         cacheLayer{c: d.Cache, log: d.Logger},
		log:           d.Logger,
		counters:      d.counters,
	}
}

// Create persists an Item and appends it to its category and subcategory.
// Unset tax fields default to the most specific parent's.
func (s *ItemService) Create(ctx context.Context, in ItemInput, imageRef string) (*models.Item, error) {
	return guardImage(ctx, s.images, s.log, imageRef, func() (*models.Item, error) {
		return s.create(ctx, in, imageRef)
	})
}

func (s *ItemService) create(ctx context.Context, in ItemInput, imageRef string) (*models.Item, error) {
	if err := requireImage(imageRef); err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateExplicitTax(in.Tax, in.TaxType); err != nil {
		return nil, err
	}
	baseAmount, err := domainsvcs.CheckAmount("baseAmount", *in.BaseAmount)
	if err != nil {
		return nil, err
	}
	discount, err := domainsvcs.CheckAmount("discount", *in.Discount)
	if err != nil {
		return nil, err
	}
	name, err := models.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	cat, sub, err := s.resolveParents(ctx, in.Category, in.Subcategory)
	if err != nil {
		return nil, err
	}

	total, err := domainsvcs.ComputeTotal(baseAmount, discount)
	if err != nil {
		return nil, err
	}

	var parentTax *models.TaxSettings
	switch {
	case sub != nil:
		parentTax = &sub.TaxSettings
	case cat != nil:
		parentTax = &cat.TaxSettings
	}
	tax, err := domainsvcs.ResolveTax(in.Applicability, in.Tax, in.TaxType, parentTax)
	if err != nil {
		return nil, err
	}

	item := models.NewItem(name, in.Description, imageRef, tax, baseAmount, discount, total)
	item.Link(cat, sub)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.items.Save(ctx, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		if cat != nil {
			if err := s.categories.AppendItem(ctx, cat.ID, item.ID); err != nil {
				return fmt.Errorf("append item to category: %w", err)
			}
		}
		if sub != nil {
			if err := s.subcategories.AppendItem(ctx, sub.ID, item.ID); err != nil {
				return fmt.Errorf("append item to subcategory: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cat != nil {
		s.cache.invalidate(ctx, cache.KindCategory, cat.ID)
	}
	if sub != nil {
		s.cache.invalidate(ctx, cache.KindSubcategory, sub.ID)
	}

	s.counters.entityCreated(ctx, cache.KindItem)
	s.log.InfoContext(ctx, "item created", "item_id", item.ID, "name", item.Name)
	return item, nil
}

// resolveParents looks up the named category and, within it, the named
// subcategory. Empty names resolve to nil.
func (s *ItemService) resolveParents(ctx context.Context, categoryName, subcategoryName string) (*models.Category, *models.Subcategory, error) {
	if categoryName == "" {
		if subcategoryName != "" {
			return nil, nil, domain.NewValidationError("subcategory requires a category")
		}
		return nil, nil, nil
	}

	catName, err := models.NormalizeName(categoryName)
	if err != nil {
		return nil, nil, err
	}
	cat, err := s.categories.FindByName(ctx, catName)
	if err != nil {
		return nil, nil, err
	}
	if subcategoryName == "" {
		return cat, nil, nil
	}

	subName, err := models.NormalizeName(subcategoryName)
	if err != nil {
		return nil, nil, err
	}
	sub, err := s.subcategories.FindByNameInCategory(ctx, cat.ID, subName)
	if err != nil {
		return nil, nil, err
	}
	return cat, sub, nil
}

func (s *ItemService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.items.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return domain.ErrItemAlreadyExists
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find item by name: %w", err)
	}
}

// Edit applies p to the item with id rawID. Amounts and parents are fixed at
// creation.
func (s *ItemService) Edit(ctx context.Context, rawID string, p Patch) (*models.Item, error) {
	id, err := models.ParseEntityID("item", rawID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, domain.NewValidationError("provide at least one attribute to change")
	}

	if err := patchText(p, &item.Name, &item.Description); err != nil {
		return nil, err
	}
	if p.Name != nil {
		if err := s.ensureNameFree(ctx, item.Name, item.ID); err != nil {
			return nil, err
		}
	}
	if item.TaxSettings, err = domainsvcs.ApplyTaxPatch(item.TaxSettings, p.Applicability, p.Tax, p.TaxType); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.cache.invalidate(ctx, cache.KindItem, item.ID)

	s.log.InfoContext(ctx, "item updated", "item_id", item.ID)
	return item, nil
}

func (s *ItemService) GetAll(ctx context.Context) ([]*models.Item, error) {
	out, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

func (s *ItemService) GetByIdentifier(ctx context.Context, identifier string) (*models.Item, error) {
	if models.IsEntityID(identifier) {
		return readThrough(ctx, s.cache, cache.KindItem, uuid.MustParse(identifier), s.items.GetByID)
	}
	name := models.ParseIdentifier(identifier)
	if name == "" {
		return nil, domain.ErrItemNotFound
	}
	return s.items.FindByName(ctx, name)
}

// GetByCategory returns every item whose category is rawCategoryID.
func (s *ItemService) GetByCategory(ctx context.Context, rawCategoryID string) ([]*models.Item, error) {
	id, err := models.ParseEntityID("category", rawCategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := readThrough(ctx, s.cache, cache.KindCategory, id, s.categories.GetByID); err != nil {
		return nil, err
	}
	out, err := s.items.ListByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list items of category: %w", err)
	}
	return out, nil
}

// GetBySubcategory returns the subcategory's items in the order they were
// added to it.
func (s *ItemService) GetBySubcategory(ctx context.Context, rawSubcategoryID string) ([]*models.Item, error) {
	id, err := models.ParseEntityID("subcategory", rawSubcategoryID)
	if err != nil {
		return nil, err
	}
	sub, err := readThrough(ctx, s.cache, cache.KindSubcategory, id, s.subcategories.GetByID)
	if err != nil {
		return nil, err
	}
	out, err := s.items.ListByIDs(ctx, sub.Items)
	if err != nil {
		return nil, fmt.Errorf("list items of subcategory: %w", err)
	}
	return out, nil
}

// Search returns items whose name contains the slug-decoded fragment, in any
// casing. No match is an empty result, not an error.
func (s *ItemService) Search(ctx context.Context, fragment string) ([]*models.Item, error) {
	out, err := s.items.Search(ctx, models.ParseIdentifier(fragment))
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return out, nil
}
