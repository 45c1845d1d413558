package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/pkg/events"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// Publisher writes outbox messages inside the caller's transaction.
// *events.EventBus implements it.
type Publisher interface {
	PublishInTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error
}

// publishCreated writes one created event into tx. A nil bus disables
// publishing.
func publishCreated(ctx context.Context, bus Publisher, tx *sql.Tx, topic string, eventID uuid.UUID, payload any) error {
	if bus == nil {
		return nil
	}
	msg, err := events.NewMessage(ctx, eventID.String(), domainevents.EventVersion, payload)
	if err != nil {
		return err
	}
	return bus.PublishInTx(ctx, tx, topic, msg)
}

type taxColumns struct {
	TaxApplicability bool                `db:"tax_applicability"`
	Tax              decimal.NullDecimal `db:"tax"`
	TaxType          sql.NullString      `db:"tax_type"`
}

func toTaxColumns(s models.TaxSettings) taxColumns {
	var c taxColumns
	c.TaxApplicability = s.Applicable
	if s.Tax != nil {
		c.Tax = decimal.NewNullDecimal(*s.Tax)
	}
	if s.Type != nil {
		c.TaxType = sql.NullString{String: string(*s.Type), Valid: true}
	}
	return c
}

func (c taxColumns) settings() models.TaxSettings {
	s := models.TaxSettings{Applicable: c.TaxApplicability}
	if c.Tax.Valid {
		tax := c.Tax.Decimal
		s.Tax = &tax
	}
	if c.TaxType.Valid {
		t := models.TaxType(c.TaxType.String)
		s.Type = &t
	}
	return s
}

// uuidList scans a PostgreSQL uuid[] column.
type uuidList []uuid.UUID

func (l *uuidList) Scan(src any) error {
	var raw []string
	// pgtype.Map caches scan plans and is not safe for concurrent use.
	if err := pgtype.NewMap().SQLScanner(&raw).Scan(src); err != nil {
		return fmt.Errorf("scan uuid[]: %w", err)
	}
	out := make(uuidList, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("scan uuid[] element %q: %w", s, err)
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

type categoryRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Image       string    `db:"image"`
	Description string    `db:"description"`
	taxColumns
	Subcategories uuidList  `db:"subcategories"`
	Items         uuidList  `db:"items"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r categoryRow) model() *models.Category {
	return &models.Category{
		ID:            r.ID,
		Name:          r.Name,
		Image:         r.Image,
		Description:   r.Description,
		TaxSettings:   r.settings(),
		Subcategories: nonNil(r.Subcategories),
		Items:         nonNil(r.Items),
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

type subcategoryRow struct {
	ID          uuid.UUID `db:"id"`
	CategoryID  uuid.UUID `db:"category_id"`
	Name        string    `db:"name"`
	Image       string    `db:"image"`
	Description string    `db:"description"`
	taxColumns
	Items     uuidList  `db:"items"`
	CreatedAt time.Time `db:"created_at"`
}

func (r subcategoryRow) model() *models.Subcategory {
	return &models.Subcategory{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		TaxSettings: r.settings(),
		Items:       nonNil(r.Items),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type itemRow struct {
	ID            uuid.UUID     `db:"id"`
	CategoryID    uuid.NullUUID `db:"category_id"`
	SubcategoryID uuid.NullUUID `db:"subcategory_id"`
	Name          string        `db:"name"`
	Image         string        `db:"image"`
	Description   string        `db:"description"`
	taxColumns
	BaseAmount  decimal.Decimal `db:"base_amount"`
	Discount    decimal.Decimal `db:"discount"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	CreatedAt   time.Time       `db:"created_at"`
}

func toItemRow(i *models.Item) itemRow {
	row := itemRow{
		ID:          i.ID,
		Name:        i.Name,
		Image:       i.Image,
		Description: i.Description,
		taxColumns:  toTaxColumns(i.TaxSettings),
		BaseAmount:  i.BaseAmount,
		Discount:    i.Discount,
		TotalAmount: i.TotalAmount,
		CreatedAt:   i.CreatedAt,
	}
	if i.CategoryID != nil {
		row.CategoryID = uuid.NullUUID{UUID: *i.CategoryID, Valid: true}
	}
	if i.SubcategoryID != nil {
		row.SubcategoryID = uuid.NullUUID{UUID: *i.SubcategoryID, Valid: true}
	}
	return row
}

func (r itemRow) model() *models.Item {
	i := &models.Item{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		Description: r.Description,
		TaxSettings: r.settings(),
		BaseAmount:  r.BaseAmount,
		Discount:    r.Discount,
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.UUID
		i.CategoryID = &id
	}
	if r.SubcategoryID.Valid {
		id := r.SubcategoryID.UUID
		i.SubcategoryID = &id
	}
	return i
}

func nonNil(l uuidList) []uuid.UUID {
	if l == nil {
		return []uuid.UUID{}
	}
	return []uuid.UUID(l)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
