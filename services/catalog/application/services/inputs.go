package services

import "github.com/shopspring/decimal"

// TaxInput carries the optional tax fields shared by every create and edit.
// A nil field was not supplied.
type TaxInput struct {
	Applicability *bool
	Tax           *decimal.Decimal
	TaxType       *string
}

// CategoryInput is the payload of CategoryService.Create.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
	TaxInput
}

// SubcategoryInput is the payload of SubcategoryService.Create. Category is
// the parent's name.
type SubcategoryInput struct {
	Category    string `json:"category" validate:"required,notblank"`
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
	TaxInput
}

// ItemInput is the payload of ItemService.Create. BaseAmount and Discount
// must be present; zero is a valid value. Category and Subcategory are
// optional parent names.
type ItemInput struct {
	Name        string           `json:"name" validate:"required,notblank"`
	Description string           `json:"description" validate:"required,notblank"`
	BaseAmount  *decimal.Decimal `json:"baseAmount" validate:"required"`
	Discount    *decimal.Decimal `json:"discount" validate:"required"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	TaxInput
}

// Patch is a partial update accepted by every Edit.
type Patch struct {
	Name        *string
	Description *string
	TaxInput
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil &&
		p.Applicability == nil && p.Tax == nil && p.TaxType == nil
}
