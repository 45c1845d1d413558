package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and tax values are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is the root of the catalog hierarchy.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	TaxSettings
	Subcategories []uuid.UUID `json:"subcategories"`
	Items         []uuid.UUID `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewCategory constructs a Category with a generated ID and empty back-references.
// name must already be normalized.
func NewCategory(name, description, image string, tax TaxSettings) *Category {
	return &Category{
		ID:            uuid.New(),
		Name:          name,
		Image:         image,
		Description:   description,
		TaxSettings:   tax,
		Subcategories: []uuid.UUID{},
		Items:         []uuid.UUID{},
		CreatedAt:     time.Now().UTC(),
	}
}
