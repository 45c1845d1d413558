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

// CategoryService orchestrates creation, edits and lookups of Categories.
// Created events are written by the repository (outbox pattern).
type CategoryService struct {
	categories repositories.CategoryRepository
	images     storage.ImageStore
	cache      cacheLayer
	log        logger.Logger
	counters   counters
}

func NewCategoryService(d Deps) *CategoryService {
	return &CategoryService{
		categories: d.Categories,
		images:     d.Images,
		cache:      cacheLayer{c: d.Cache, log: d.Logger},
		log:        d.Logger,
		counters:   d.counters,
	}
}

// Create validates in and persists a new Category that owns imageRef. The
// image is deleted again when Create fails.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput, imageRef string) (*models.Category, error) {
	return guardImage(ctx, s.images, s.log, imageRef, func() (*models.Category, error) {
		return s.create(ctx, in, imageRef)
	})
}

func (s *CategoryService) create(ctx context.Context, in CategoryInput, imageRef string) (*models.Category, error) {
	if err := requireImage(imageRef); err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	tax, err := domainsvcs.ResolveTax(in.Applicability, in.Tax, in.TaxType, nil)
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

	c := models.NewCategory(name, in.Description, imageRef, tax)
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}

	s.counters.entityCreated(ctx, cache.KindCategory)
	s.log.InfoContext(ctx, "category created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

// ensureNameFree fails with ErrCategoryAlreadyExists when another category
// than self already uses name.
func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return domain.ErrCategoryAlreadyExists
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find category by name: %w", err)
	}
}

// Edit applies p to the category with id rawID.
func (s *CategoryService) Edit(ctx context.Context, rawID string, p Patch) (*models.Category, error) {
	id, err := models.ParseEntityID("category", rawID)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, domain.NewValidationError("provide at least one attribute to change")
	}

	if err := patchText(p, &c.Name, &c.Description); err != nil {
		return nil, err
	}
	if p.Name != nil {
		if err := s.ensureNameFree(ctx, c.Name, c.ID); err != nil {
			return nil, err
		}
	}
	if c.TaxSettings, err = domainsvcs.ApplyTaxPatch(c.TaxSettings, p.Applicability, p.Tax, p.TaxType); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.cache.invalidate(ctx, cache.KindCategory, c.ID)

	s.log.InfoContext(ctx, "category updated", "category_id", c.ID)
	return c, nil
}

// GetAll returns every category, oldest first.
func (s *CategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	out, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetByIdentifier resolves identifier as an id first and otherwise as a
// slugged name.
func (s *CategoryService) GetByIdentifier(ctx context.Context, identifier string) (*models.Category, error) {
	if models.IsEntityID(identifier) {
		return s.byID(ctx, uuid.MustParse(identifier))
	}
	name := models.ParseIdentifier(identifier)
	if name == "" {
		return nil, domain.ErrCategoryNotFound
	}
	return s.categories.FindByName(ctx, name)
}

func (s *CategoryService) byID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return readThrough(ctx, s.cache, cache.KindCategory, id, s.categories.GetByID)
}
