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

const itemColumns = `id, category_id, subcategory_id, name, image, description,
	tax_applicability, tax, tax_type, base_amount, discount, total_amount, created_at`

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus Publisher
}

func NewItemRepository(db *database.Database, bus Publisher) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// Save inserts i and writes an item.created event in the same transaction.
func (r *ItemRepository) Save(ctx context.Context, i *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := sqlx.NamedExecContext(ctx, tx, `
			INSERT INTO items (id, category_id, subcategory_id, name, image, description,
				tax_applicability, tax, tax_type, base_amount, discount, total_amount, created_at)
			VALUES (:id, :category_id, :subcategory_id, :name, :image, :description,
				:tax_applicability, :tax, :tax_type, :base_amount, :discount, :total_amount, :created_at)`,
			toItemRow(i),
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrItemAlreadyExists
			}
			return fmt.Errorf("insert item: %w", err)
		}

		evt := domainevents.ItemCreated(i)
		if err := publishCreated(ctx, r.bus, tx.Tx, domainevents.TopicItemCreated, evt.EventID, evt); err != nil {
			return fmt.Errorf("publish item created: %w", err)
		}
		return nil
	})
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

func (r *ItemRepository) FindByName(ctx context.Context, name string) (*models.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE lower(name) = lower($1)`, name)
}

func (r *ItemRepository) getOne(ctx context.Context, query string, args ...any) (*models.Item, error) {
	var row itemRow
	if err := sqlx.GetContext(ctx, r.db.Conn(ctx), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return row.model(), nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id`)
}

func (r *ItemRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE category_id = $1 ORDER BY created_at, id`, categoryID)
}

// ListByIDs keeps the order of ids; unknown ids are skipped.
func (r *ItemRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Item, error) {
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}
	return r.list(ctx, `SELECT `+itemColumns+` FROM items
		WHERE id = ANY($1::uuid[]) ORDER BY array_position($1::uuid[], id)`, idStrings(ids))
}

// Search matches fragment literally and case-insensitively anywhere in the name.
func (r *ItemRepository) Search(ctx context.Context, fragment string) ([]*models.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\' ORDER BY created_at, id`, escapeLike(fragment))
}

func (r *ItemRepository) list(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.db.Conn(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]*models.Item, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// Update persists name, description and tax settings. Amounts and parent
// links are fixed at creation.
func (r *ItemRepository) Update(ctx context.Context, i *models.Item) error {
	tax := toTaxColumns(i.TaxSettings)
	res, err := r.db.Conn(ctx).ExecContext(ctx, `
		UPDATE items
		SET name = $2, description = $3, tax_applicability = $4, tax = $5, tax_type = $6
		WHERE id = $1`,
		i.ID, i.Name, i.Description, tax.TaxApplicability, tax.Tax, tax.TaxType,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrItemAlreadyExists
		}
		return fmt.Errorf("update item: %w", err)
	}
	return expectOne(res, domain.ErrItemNotFound)
}
