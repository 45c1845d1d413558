// Package memory is a process-local implementation of the catalog
// repositories. It backs service and handler tests and enforces the same
// uniqueness rules as the PostgreSQL schema.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// Store holds every catalog entity. Its Categories, Subcategories and Items
// methods return the per-entity repositories.
type Store struct {
	mu            sync.RWMutex
	categories    map[uuid.UUID]models.Category
	subcategories map[uuid.UUID]models.Subcategory
	items         map[uuid.UUID]models.Item
	published     []Published
	order         map[uuid.UUID]int

	// FailOn makes the named operation return the given error, for example
	// "item.append" or "category.save".
	FailOn map[string]error
}

// Published records an event emitted by Save.
type Published struct {
	Topic string
	Event any
}

type txKey struct{}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		categories:    make(map[uuid.UUID]models.Category),
		subcategories: make(map[uuid.UUID]models.Subcategory),
		items:         make(map[uuid.UUID]models.Item),
		order:         make(map[uuid.UUID]int),
		FailOn:        make(map[string]error),
	}
}

// RunInTx snapshots the store and restores it when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.RLock()
	cats := cloneMap(s.categories)
	subs := cloneMap(s.subcategories)
	items := cloneMap(s.items)
	pub := slices.Clone(s.published)
	order := cloneMap(s.order)
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.categories, s.subcategories, s.items, s.published, s.order = cats, subs, items, pub, order
		s.mu.Unlock()
		return err
	}
	return nil
}

// Published returns the events emitted so far.
func (s *Store) Published() []Published {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.published)
}

// ReferencedImages implements repositories.ImageIndex.
func (s *Store) ReferencedImages(_ context.Context) (map[string]struct{}, error) {
	if err := s.fail("images.referenced"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{})
	for _, c := range s.categories {
		out[c.Image] = struct{}{}
	}
	for _, sc := range s.subcategories {
		out[sc.Image] = struct{}{}
	}
	for _, i := range s.items {
		out[i.Image] = struct{}{}
	}
	return out, nil
}

func (s *Store) fail(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FailOn[op]
}

// track records insertion order; lists are returned oldest first.
func (s *Store) track(id uuid.UUID) {
	s.order[id] = len(s.order)
}

func (s *Store) before(a, b uuid.UUID) bool {
	return s.order[a] < s.order[b]
}

func (s *Store) publish(topic string, ev any) {
	s.published = append(s.published, Published{Topic: topic, Event: ev})
}

func cloneMap[T any](m map[uuid.UUID]T) map[uuid.UUID]T {
	out := make(map[uuid.UUID]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Categories returns the CategoryRepository view of the store.
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

// Subcategories returns the SubcategoryRepository view of the store.
func (s *Store) Subcategories() *SubcategoryRepository { return &SubcategoryRepository{s: s} }

// Items returns the ItemRepository view of the store.
func (s *Store) Items() *ItemRepository { return &ItemRepository{s: s} }

// CategoryRepository implements repositories.CategoryRepository.
type CategoryRepository struct{ s *Store }

func copyCategory(c models.Category) *models.Category {
	c.Subcategories = slices.Clone(c.Subcategories)
	c.Items = slices.Clone(c.Items)
	return &c
}

func (r *CategoryRepository) Save(_ context.Context, c *models.Category) error {
	if err := r.s.fail("category.save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if sameName(existing.Name, c.Name) {
			return domain.ErrCategoryAlreadyExists
		}
	}
	r.s.categories[c.ID] = *copyCategory(*c)
	r.s.track(c.ID)
	r.s.publish(events.TopicCategoryCreated, events.CategoryCreated(c))
	return nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return copyCategory(c), nil
}

func (r *CategoryRepository) FindByName(_ context.Context, name string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if sameName(c.Name, name) {
			return copyCategory(c), nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *CategoryRepository) List(_ context.Context) ([]*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, copyCategory(c))
	}
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *CategoryRepository) Update(_ context.Context, c *models.Category) error {
	if err := r.s.fail("category.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.categories[c.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	for id, existing := range r.s.categories {
		if id != c.ID && sameName(existing.Name, c.Name) {
			return domain.ErrCategoryAlreadyExists
		}
	}
	current.Name, current.Description, current.TaxSettings = c.Name, c.Description, c.TaxSettings
	r.s.categories[c.ID] = current
	return nil
}

func (r *CategoryRepository) AppendSubcategory(_ context.Context, categoryID, subcategoryID uuid.UUID) error {
	if err := r.s.fail("category.append"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[categoryID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	c.Subcategories = append(slices.Clone(c.Subcategories), subcategoryID)
	r.s.categories[categoryID] = c
	return nil
}

func (r *CategoryRepository) AppendItem(_ context.Context, categoryID, itemID uuid.UUID) error {
	if err := r.s.fail("category.append"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[categoryID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	c.Items = append(slices.Clone(c.Items), itemID)
	r.s.categories[categoryID] = c
	return nil
}

// SubcategoryRepository implements repositories.SubcategoryRepository.
type SubcategoryRepository struct{ s *Store }

func copySubcategory(sc models.Subcategory) *models.Subcategory {
	sc.Items = slices.Clone(sc.Items)
	return &sc
}

func (r *SubcategoryRepository) Save(_ context.Context, sc *models.Subcategory) error {
	if err := r.s.fail("subcategory.save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.subcategories {
		if existing.CategoryID == sc.CategoryID && sameName(existing.Name, sc.Name) {
			return domain.ErrSubcategoryAlreadyExists
		}
	}
	r.s.subcategories[sc.ID] = *copySubcategory(*sc)
	r.s.track(sc.ID)
	r.s.publish(events.TopicSubcategoryCreated, events.SubcategoryCreated(sc))
	return nil
}

func (r *SubcategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Subcategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sc, ok := r.s.subcategories[id]
	if !ok {
		return nil, domain.ErrSubcategoryNotFound
	}
	return copySubcategory(sc), nil
}

func (r *SubcategoryRepository) FindByName(ctx context.Context, name string) (*models.Subcategory, error) {
	all, _ := r.List(ctx)
	for _, sc := range all {
		if sameName(sc.Name, name) {
			return sc, nil
		}
	}
	return nil, domain.ErrSubcategoryNotFound
}

func (r *SubcategoryRepository) FindByNameInCategory(_ context.Context, categoryID uuid.UUID, name string) (*models.Subcategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sc := range r.s.subcategories {
		if sc.CategoryID == categoryID && sameName(sc.Name, name) {
			return copySubcategory(sc), nil
		}
	}
	return nil, domain.ErrSubcategoryNotFound
}

func (r *SubcategoryRepository) List(_ context.Context) ([]*models.Subcategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Subcategory, 0, len(r.s.subcategories))
	for _, sc := range r.s.subcategories {
		out = append(out, copySubcategory(sc))
	}
	sort.Slice(out, func(i, j int) bool { return r.s.before(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *SubcategoryRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Subcategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Subcategory, 0, len(ids))
	for _, id := range ids {
		if sc, ok := r.s.subcategories[id]; ok {
			out = append(out, copySubcategory(sc))
		}
	}
	return out, nil
}

func (r *SubcategoryRepository) Update(_ context.Context, sc *models.Subcategory) error {
	if err := r.s.fail("subcategory.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.subcategories[sc.ID]
	if !ok {
		return domain.ErrSubcategoryNotFound
	}
	for id, existing := range r.s.subcategories {
		if id != sc.ID && existing.CategoryID == current.CategoryID && sameName(existing.Name, sc.Name) {
			return domain.ErrSubcategoryAlreadyExists
		}
	}
	current.Name, current.Description, current.TaxSettings = sc.Name, sc.Description, sc.TaxSettings
	r.s.subcategories[sc.ID] = current
	return nil
}

func (r *SubcategoryRepository) AppendItem(_ context.Context, subcategoryID, itemID uuid.UUID) error {
	if err := r.s.fail("subcategory.append"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.subcategories[subcategoryID]
	if !ok {
		return domain.ErrSubcategoryNotFound
	}
	sc.Items = append(slices.Clone(sc.Items), itemID)
	r.s.subcategories[subcategoryID] = sc
	return nil
}

// ItemRepository implements repositories.ItemRepository.
type ItemRepository struct{ s *Store }

func copyItem(i models.Item) *models.Item {
	return &i
}

func (r *ItemRepository) Save(_ context.Context, i *models.Item) error {
	if err := r.s.fail("item.save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.items {
		if sameName(existing.Name, i.Name) {
			return domain.ErrItemAlreadyExists
		}
	}
	r.s.items[i.ID] = *i
	r.s.track(i.ID)
	r.s.publish(events.TopicItemCreated, events.ItemCreated(i))
	return nil
}

func (r *ItemRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	if err := r.s.fail("item.get"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return copyItem(i), nil
}

func (r *ItemRepository) FindByName(_ context.Context, name string) (*models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, i := range r.s.items {
		if sameName(i.Name, name) {
			return copyItem(i), nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (r *ItemRepository) filter(keep func(models.Item) bool) []*models.Item {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Item, 0)
	for _, i := range r.s.items {
		if keep(i) {
			out = append(out, copyItem(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return r.s.before(out[a].ID, out[b].ID) })
	return out
}

func (r *ItemRepository) List(_ context.Context) ([]*models.Item, error) {
	return r.filter(func(models.Item) bool { return true }), nil
}

func (r *ItemRepository) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]*models.Item, error) {
	return r.filter(func(i models.Item) bool {
		return i.CategoryID != nil && *i.CategoryID == categoryID
	}), nil
}

func (r *ItemRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Item, 0, len(ids))
	for _, id := range ids {
		if i, ok := r.s.items[id]; ok {
			out = append(out, copyItem(i))
		}
	}
	return out, nil
}

func (r *ItemRepository) Search(_ context.Context, fragment string) ([]*models.Item, error) {
	needle := strings.ToLower(fragment)
	return r.filter(func(i models.Item) bool {
		return strings.Contains(strings.ToLower(i.Name), needle)
	}), nil
}

func (r *ItemRepository) Update(_ context.Context, i *models.Item) error {
	if err := r.s.fail("item.update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.items[i.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	for id, existing := range r.s.items {
		if id != i.ID && sameName(existing.Name, i.Name) {
			return domain.ErrItemAlreadyExists
		}
	}
	current.Name, current.Description, current.TaxSettings = i.Name, i.Description, i.TaxSettings
	r.s.items[i.ID] = current
	return nil
}
