package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a priced leaf of the catalog. Category and Subcategory are optional
// links; Subcategory is only set together with its owning Category.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	TaxSettings
	BaseAmount    decimal.Decimal `json:"baseAmount"`
	Discount      decimal.Decimal `json:"discount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CategoryID    *uuid.UUID      `json:"category,omitempty"`
	SubcategoryID *uuid.UUID      `json:"subcategory,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewItem constructs an Item. total must already satisfy the amount rule.
func NewItem(name, description, image string, tax TaxSettings, base, discount, total decimal.Decimal) *Item {
	return &Item{
		ID:          uuid.New(),
		Name:        name,
		Image:       image,
		Description: description,
		TaxSettings: tax,
		BaseAmount:  base,
		Discount:    discount,
		TotalAmount: total,
		CreatedAt:   time.Now().UTC(),
	}
}

// Link attaches the item to its parents. sub may be nil.
func (i *Item) Link(cat *Category, sub *Subcategory) {
	if cat != nil {
		id := cat.ID
		i.CategoryID = &id
	}
	if sub != nil {
		id := sub.ID
		i.SubcategoryID = &id
	}
}
