package models

import (
	"time"

	"github.com/google/uuid"
)

// Subcategory belongs to exactly one Category for its whole life.
type Subcategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"category"`
	TaxSettings
	Items     []uuid.UUID `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewSubcategory constructs a Subcategory owned by categoryID.
func NewSubcategory(categoryID uuid.UUID, name, description, image string, tax TaxSettings) *Subcategory {
	return &Subcategory{
		ID:          uuid.New(),
		Name:        name,
		Image:       image,
		Description: description,
		CategoryID:  categoryID,
		TaxSettings: tax,
		Items:       []uuid.UUID{},
		CreatedAt:   time.Now().UTC(),
	}
}
