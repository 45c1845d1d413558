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

// SubcategoryService orchestrates Subcategories and keeps the parent
// Category's back-references in step.
type SubcategoryService struct {
	tx            repositories.Transactor
	categories    repositories.CategoryRepository
	subcategories repositories.SubcategoryRepository
	images        storage.ImageStore
	cache         cacheLayer
	log           logger.Logger
	counters      counters
}

func NewSubcategoryService(d Deps) *SubcategoryService {
	return &SubcategoryService{
		tx:            d.Tx,
		categories:    d.Categories,
		subcategories: d.Subcategories,
		images:        d.Images,
		cache:         cacheLayer{c: d.Cache, log: d.Logger},
		log:           d.Logger,
		counters:      d.counters,
	}
}

// Create persists a Subcategory under the category named in.Category and
// appends it to that category. Unset tax fields default to the parent's.
func (s *SubcategoryService) Create(ctx context.Context, in SubcategoryInput, imageRef string) (*models.Subcategory, error) {
	return guardImage(ctx, s.images, s.log, imageRef, func() (*models.Subcategory, error) {
		return s.create(ctx, in, imageRef)
	})
}

func (s *SubcategoryService) create(ctx context.Context, in SubcategoryInput, imageRef string) (*models.Subcategory, error) {
	if err := requireImage(imageRef); err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateExplicitTax(in.Tax, in.TaxType); err != nil {
		return nil, err
	}
	name, err := models.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	parentName, err := models.NormalizeName(in.Category)
	if err != nil {
		return nil, err
	}

	parent, err := s.categories.FindByName(ctx, parentName)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, parent.ID, name, uuid.Nil); err != nil {
		return nil, err
	}

	tax, err := domainsvcs.ResolveTax(in.Applicability, in.Tax, in.TaxType, &parent.TaxSettings)
	if err != nil {
		return nil, err
	}

	sub := models.NewSubcategory(parent.ID, name, in.Description, imageRef, tax)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.subcategories.Save(ctx, sub); err != nil {
			return fmt.Errorf("save subcategory: %w", err)
		}
		if err := s.categories.AppendSubcategory(ctx, parent.ID, sub.ID); err != nil {
			return fmt.Errorf("append subcategory to category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, cache.KindCategory, parent.ID)

	s.counters.entityCreated(ctx, cache.KindSubcategory)
	s.log.InfoContext(ctx, "subcategory created",
		"subcategory_id", sub.ID, "category_id", parent.ID, "name", sub.Name)
	return sub, nil
}

func (s *SubcategoryService) ensureNameFree(ctx context.Context, categoryID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.subcategories.FindByNameInCategory(ctx, categoryID, name)
	switch {
	case err == nil && existing.ID != self:
		return domain.ErrSubcategoryAlreadyExists
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find subcategory by name: %w", err)
	}
}

// Edit applies p to the subcategory with id rawID. The owning category
// never changes.
func (s *SubcategoryService) Edit(ctx context.Context, rawID string, p Patch) (*models.Subcategory, error) {
	id, err := models.ParseEntityID("subcategory", rawID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subcategories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, domain.NewValidationError("provide at least one attribute to change")
	}

	if err := patchText(p, &sub.Name, &sub.Description); err != nil {
		return nil, err
	}
	if p.Name != nil {
		if err := s.ensureNameFree(ctx, sub.CategoryID, sub.Name, sub.ID); err != nil {
			return nil, err
		}
	}
	if sub.TaxSettings, err = domainsvcs.ApplyTaxPatch(sub.TaxSettings, p.Applicability, p.Tax, p.TaxType); err != nil {
		return nil, err
	}

	if err := s.subcategories.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("update subcategory: %w", err)
	}
	s.cache.invalidate(ctx, cache.KindSubcategory, sub.ID)

	s.log.InfoContext(ctx, "subcategory updated", "subcategory_id", sub.ID)
	return sub, nil
}

func (s *SubcategoryService) GetAll(ctx context.Context) ([]*models.Subcategory, error) {
	out, err := s.subcategories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return out, nil
}

// GetByIdentifier resolves identifier as an id first, otherwise as a slugged
// name. A name shared by several categories resolves to the oldest match.
func (s *SubcategoryService) GetByIdentifier(ctx context.Context, identifier string) (*models.Subcategory, error) {
	if models.IsEntityID(identifier) {
		return readThrough(ctx, s.cache, cache.KindSubcategory, uuid.MustParse(identifier), s.subcategories.GetByID)
	}
	name := models.ParseIdentifier(identifier)
	if name == "" {
		return nil, domain.ErrSubcategoryNotFound
	}
	return s.subcategories.FindByName(ctx, name)
}

// GetByCategory returns the category's subcategories in the order they were
// added to it.
func (s *SubcategoryService) GetByCategory(ctx context.Context, rawCategoryID string) ([]*models.Subcategory, error) {
	id, err := models.ParseEntityID("category", rawCategoryID)
	if err != nil {
		return nil, err
	}
	parent, err := readThrough(ctx, s.cache, cache.KindCategory, id, s.categories.GetByID)
	if err != nil {
		return nil, err
	}
	out, err := s.subcategories.ListByIDs(ctx, parent.Subcategories)
	if err != nil {
		return nil, fmt.Errorf("list subcategories of category: %w", err)
	}
	return out, nil
}
