package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

func TestSubcategoryCreate_InheritsParentTaxAndAppends(t *testing.T) {
	f := newFixture(t)
	parent, err := f.svc.Category.Create(f.ctx, CategoryInput{
		Name: "Shoes", Description: "d",
		TaxInput: TaxInput{Applicability: boolPtr(true), Tax: dec("5"), TaxType: strPtr("Fixed")},
	}, f.upload(t))
	require.NoError(t, err)

	sub, err := f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "shoes", Name: "running", Description: "d"}, f.upload(t))
	require.NoError(t, err)

	assert.Equal(t, "Running", sub.Name)
	assert.Equal(t, parent.ID, sub.CategoryID)
	require.True(t, sub.Applicable)
	assert.True(t, decimal.NewFromInt(5).Equal(*sub.Tax))
	assert.Equal(t, models.TaxTypeFixed, *sub.Type)

	got, err := f.svc.Category.GetByIdentifier(f.ctx, parent.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sub.ID}, got.Subcategories)

	published := f.store.Published()
	require.Len(t, published, 2)
	assert.Equal(t, events.TopicSubcategoryCreated, published[1].Topic)
}

func TestSubcategoryCreate_ExplicitTaxOverridesParent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Category.Create(f.ctx, CategoryInput{
		Name: "Shoes", Description: "d",
		TaxInput: TaxInput{Applicability: boolPtr(true), Tax: dec("5")},
	}, f.upload(t))
	require.NoError(t, err)

	sub, err := f.svc.Subcategory.Create(f.ctx, SubcategoryInput{
		Category: "Shoes", Name: "Sandals", Description: "d",
		TaxInput: TaxInput{Applicability: boolPtr(false), Tax: dec("9")},
	}, f.upload(t))
	require.NoError(t, err)
	assert.False(t, sub.Applicable)
	assert.Nil(t, sub.Tax)
}

func TestSubcategoryCreate_UnknownParent(t *testing.T) {
	f := newFixture(t)
	img := f.upload(t)

	_, err := f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Ghost", Name: "Running", Description: "d"}, img)
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.False(t, f.images.Has(img))
}

func TestSubcategoryCreate_UniquenessScopedToParent(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Shoes", "Bags"} {
		_, err := f.svc.Category.Create(f.ctx, CategoryInput{Name: name, Description: "d"}, f.upload(t))
		require.NoError(t, err)
	}

	_, err := f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Shoes", Name: "Leather", Description: "d"}, f.upload(t))
	require.NoError(t, err)
	_, err = f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Bags", Name: "leather", Description: "d"}, f.upload(t))
	require.NoError(t, err)

	img := f.upload(t)
	_, err = f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Shoes", Name: "LEATHER", Description: "d"}, img)
	require.ErrorIs(t, err, domain.ErrSubcategoryAlreadyExists)
	assert.False(t, f.images.Has(img))

	first, err := f.svc.Subcategory.GetByIdentifier(f.ctx, "leather")
	require.NoError(t, err)
	shoes, err := f.svc.Category.GetByIdentifier(f.ctx, "Shoes")
	require.NoError(t, err)
	assert.Equal(t, shoes.ID, first.CategoryID, "name lookup resolves to the oldest match")
}

func TestSubcategoryCreate_AppendFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Category.Create(f.ctx, CategoryInput{Name: "Shoes", Description: "d"}, f.upload(t))
	require.NoError(t, err)

	f.store.FailOn["category.append"] = assert.AnError
	img := f.upload(t)
	_, err = f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Shoes", Name: "Running", Description: "d"}, img)
	require.ErrorIs(t, err, assert.AnError)

	all, err := f.svc.Subcategory.GetAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.False(t, f.images.Has(img))
	assert.Len(t, f.store.Published(), 1)
}

func TestSubcategoryGetByCategory(t *testing.T) {
	f := newFixture(t)
	parent, err := f.svc.Category.Create(f.ctx, CategoryInput{Name: "Shoes", Description: "d"}, f.upload(t))
	require.NoError(t, err)

	var want []uuid.UUID
	for _, name := range []string{"Running", "Hiking", "Boots"} {
		sub, err := f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Shoes", Name: name, Description: "d"}, f.upload(t))
		require.NoError(t, err)
		want = append(want, sub.ID)
	}

	got, err := f.svc.Subcategory.GetByCategory(f.ctx, parent.ID.String())
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, want, ids)

	_, err = f.svc.Subcategory.GetByCategory(f.ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.Subcategory.GetByCategory(f.ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestSubcategoryEdit_CategoryUnchanged(t *testing.T) {
	f := newFixture(t)
	parent, err := f.svc.Category.Create(f.ctx, CategoryInput{Name: "Shoes", Description: "d"}, f.upload(t))
	require.NoError(t, err)
	sub, err := f.svc.Subcategory.Create(f.ctx, SubcategoryInput{Category: "Shoes", Name: "Running", Description: "d"}, f.upload(t))
	require.NoError(t, err)

	got, err := f.svc.Subcategory.Edit(f.ctx, sub.ID.String(), Patch{Name: strPtr("trail")})
	require.NoError(t, err)
	assert.Equal(t, "Trail", got.Name)
	assert.Equal(t, parent.ID, got.CategoryID)

	_, err = f.svc.Subcategory.Edit(f.ctx, uuid.NewString(), Patch{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrSubcategoryNotFound)
}
