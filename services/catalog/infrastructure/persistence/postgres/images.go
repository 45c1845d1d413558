package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ghuser/catalog/pkg/database"
)

// ImageIndex implements repositories.ImageIndex over the three catalog tables.
type ImageIndex struct {
	db *database.Database
}

func NewImageIndex(db *database.Database) *ImageIndex {
	return &ImageIndex{db: db}
}

// ReferencedImages returns every image key stored on a catalog row.
func (x *ImageIndex) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	if err := sqlx.SelectContext(ctx, x.db.Conn(ctx), &keys, `
		SELECT image FROM categories
		UNION SELECT image FROM subcategories
		UNION SELECT image FROM items`); err != nil {
		return nil, fmt.Errorf("list referenced images: %w", err)
	}
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out, nil
}
