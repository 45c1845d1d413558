package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/services/catalog/domain"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

const categoryColumns = `id, name, image, description, tax_applicability, tax, tax_type,
	subcategories, items, created_at`

// CategoryRepository implements repositories.CategoryRepository against PostgreSQL.
type CategoryRepository struct {
	db  *database.Database
	bus Publisher
}

// NewCategoryRepository returns a CategoryRepository. bus may be nil, in which
// case no created events are written.
func NewCategoryRepository(db *database.Database, bus Publisher) *CategoryRepository {
	return &CategoryRepository{db: db, bus: bus}
}

// Save inserts c and writes a category.created event in the same transaction.
func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		tax := toTaxColumns(c.TaxSettings)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, image, description, tax_applicability, tax, tax_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Name, c.Image, c.Description, tax.TaxApplicability, tax.Tax, tax.TaxType, c.CreatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrCategoryAlreadyExists
			}
			return fmt.Errorf("insert category: %w", err)
		}

		evt := domainevents.CategoryCreated(c)
		if err := publishCreated(ctx, r.bus, tx.Tx, domainevents.TopicCategoryCreated, evt.EventID, evt); err != nil {
			return fmt.Errorf("publish category created: %w", err)
		}
		return nil
	})
}

// GetByID returns ErrCategoryNotFound when no row matches.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE lower(name) = lower($1)`, name)
}

func (r *CategoryRepository) getOne(ctx context.Context, query string, args ...any) (*models.Category, error) {
	var row categoryRow
	if err := sqlx.GetContext(ctx, r.db.Conn(ctx), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	return row.model(), nil
}

// List returns every category, oldest first.
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var rows []categoryRow
	if err := sqlx.SelectContext(ctx, r.db.Conn(ctx), &rows,
		`SELECT `+categoryColumns+` FROM categories ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]*models.Category, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// Update persists name, description and tax settings.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	tax := toTaxColumns(c.TaxSettings)
	res, err := r.db.Conn(ctx).ExecContext(ctx, `
		UPDATE categories
		SET name = $2, description = $3, tax_applicability = $4, tax = $5, tax_type = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Description, tax.TaxApplicability, tax.Tax, tax.TaxType,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrCategoryAlreadyExists
		}
		return fmt.Errorf("update category: %w", err)
	}
	return expectOne(res, domain.ErrCategoryNotFound)
}

func (r *CategoryRepository) AppendSubcategory(ctx context.Context, categoryID, subcategoryID uuid.UUID) error {
	return r.appendTo(ctx, "subcategories", categoryID, subcategoryID)
}

func (r *CategoryRepository) AppendItem(ctx context.Context, categoryID, itemID uuid.UUID) error {
	return r.appendTo(ctx, "items", categoryID, itemID)
}

// column is one of the fixed back-reference column names above.
func (r *CategoryRepository) appendTo(ctx context.Context, column string, categoryID, childID uuid.UUID) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE categories SET `+column+` = array_append(`+column+`, $2) WHERE id = $1`,
		categoryID, childID,
	)
	if err != nil {
		return fmt.Errorf("append category %s: %w", column, err)
	}
	return expectOne(res, domain.ErrCategoryNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
