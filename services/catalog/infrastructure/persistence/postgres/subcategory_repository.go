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

const subcategoryColumns = `id, category_id, name, image, description, tax_applicability, tax, tax_type,
	items, created_at`

// SubcategoryRepository implements repositories.SubcategoryRepository against PostgreSQL.
type SubcategoryRepository struct {
	db  *database.Database
	bus Publisher
}

func NewSubcategoryRepository(db *database.Database, bus Publisher) *SubcategoryRepository {
	return &SubcategoryRepository{db: db, bus: bus}
}

// Save inserts s and writes a subcategory.created event in the same transaction.
// Name uniqueness is scoped to the owning category by the schema.
func (r *SubcategoryRepository) Save(ctx context.Context, s *models.Subcategory) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		tax := toTaxColumns(s.TaxSettings)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subcategories (id, category_id, name, image, description, tax_applicability, tax, tax_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.ID, s.CategoryID, s.Name, s.Image, s.Description, tax.TaxApplicability, tax.Tax, tax.TaxType, s.CreatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrSubcategoryAlreadyExists
			}
			return fmt.Errorf("insert subcategory: %w", err)
		}

		evt := domainevents.SubcategoryCreated(s)
		if err := publishCreated(ctx, r.bus, tx.Tx, domainevents.TopicSubcategoryCreated, evt.EventID, evt); err != nil {
			return fmt.Errorf("publish subcategory created: %w", err)
		}
		return nil
	})
}

func (r *SubcategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	return r.getOne(ctx, `SELECT `+subcategoryColumns+` FROM subcategories WHERE id = $1`, id)
}

// FindByName returns the oldest subcategory with the name, in any category.
func (r *SubcategoryRepository) FindByName(ctx context.Context, name string) (*models.Subcategory, error) {
	return r.getOne(ctx, `SELECT `+subcategoryColumns+` FROM subcategories
		WHERE lower(name) = lower($1) ORDER BY created_at, id LIMIT 1`, name)
}

func (r *SubcategoryRepository) FindByNameInCategory(ctx context.Context, categoryID uuid.UUID, name string) (*models.Subcategory, error) {
	return r.getOne(ctx, `SELECT `+subcategoryColumns+` FROM subcategories
		WHERE category_id = $1 AND lower(name) = lower($2)`, categoryID, name)
}

func (r *SubcategoryRepository) getOne(ctx context.Context, query string, args ...any) (*models.Subcategory, error) {
	var row subcategoryRow
	if err := sqlx.GetContext(ctx, r.db.Conn(ctx), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("query subcategory: %w", err)
	}
	return row.model(), nil
}

func (r *SubcategoryRepository) List(ctx context.Context) ([]*models.Subcategory, error) {
	return r.list(ctx, `SELECT `+subcategoryColumns+` FROM subcategories ORDER BY created_at, id`)
}

// ListByIDs keeps the order of ids; unknown ids are skipped.
func (r *SubcategoryRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Subcategory, error) {
	if len(ids) == 0 {
		return []*models.Subcategory{}, nil
	}
	return r.list(ctx, `SELECT `+subcategoryColumns+` FROM subcategories
		WHERE id = ANY($1::uuid[]) ORDER BY array_position($1::uuid[], id)`, idStrings(ids))
}

func (r *SubcategoryRepository) list(ctx context.Context, query string, args ...any) ([]*models.Subcategory, error) {
	var rows []subcategoryRow
	if err := sqlx.SelectContext(ctx, r.db.Conn(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	out := make([]*models.Subcategory, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// Update persists name, description and tax settings. category_id is never written.
func (r *SubcategoryRepository) Update(ctx context.Context, s *models.Subcategory) error {
	tax := toTaxColumns(s.TaxSettings)
	res, err := r.db.Conn(ctx).ExecContext(ctx, `
		UPDATE subcategories
		SET name = $2, description = $3, tax_applicability = $4, tax = $5, tax_type = $6
		WHERE id = $1`,
		s.ID, s.Name, s.Description, tax.TaxApplicability, tax.Tax, tax.TaxType,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrSubcategoryAlreadyExists
		}
		return fmt.Errorf("update subcategory: %w", err)
	}
	return expectOne(res, domain.ErrSubcategoryNotFound)
}

func (r *SubcategoryRepository) AppendItem(ctx context.Context, subcategoryID, itemID uuid.UUID) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE subcategories SET items = array_append(items, $2) WHERE id = $1`,
		subcategoryID, itemID,
	)
	if err != nil {
		return fmt.Errorf("append subcategory item: %w", err)
	}
	return expectOne(res, domain.ErrSubcategoryNotFound)
}
