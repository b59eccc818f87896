package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/repository"
)

// MemStore is an in-memory stand-in for the Postgres schema. The repository views it
// hands out share one set of tables, so reference checks see each other's writes.
type MemStore struct {
	mu         sync.Mutex
	seq        int64
	users      map[int64]domain.User
	brands     map[int64]domain.StoreBrand
	locations  map[int64]domain.StoreLocation
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	entries    map[int64]domain.ProductEntry
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:      map[int64]domain.User{},
		brands:     map[int64]domain.StoreBrand{},
		locations:  map[int64]domain.StoreLocation{},
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
		entries:    map[int64]domain.ProductEntry{},
	}
}

func (m *MemStore) nextID() int64 {
	m.seq++
	return m.seq
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

func matches(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, page domain.PageRequest) domain.Page[T] {
	page = page.Normalize()
	out := domain.Page[T]{TotalCount: int64(len(items)), Page: page.Page, PerPage: page.PerPage, Items: []T{}}
	start := page.Offset()
	if start >= len(items) {
		return out
	}
	end := start + page.PerPage
	if end > len(items) {
		end = len(items)
	}
	out.Items = append(out.Items, items[start:end]...)
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ---- users ----

func (m *MemStore) Users() repository.UserRepository { return memUsers{m} }

type memUsers struct{ m *MemStore }

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return uniqueViolation("users_email_key")
		}
	}
	u.ID = r.m.nextID()
	u.CreatedAt = time.Now()
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memUsers) List(_ context.Context, page domain.PageRequest) (domain.Page[domain.User], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var items []domain.User
	for _, id := range sortedKeys(r.m.users) {
		u := r.m.users[id]
		if matches(page.Search, u.Email, u.FullName) {
			items = append(items, u)
		}
	}
	return paginate(items, page), nil
}

func (r memUsers) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	r.m.users[id] = u
	return nil
}

// ---- store brands ----

func (m *MemStore) StoreBrands() repository.StoreBrandRepository { return memBrands{m} }

type memBrands struct{ m *MemStore }

func (r memBrands) Create(_ context.Context, b *domain.StoreBrand) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b.ID = r.m.nextID()
	b.CreatedAt = time.Now()
	r.m.brands[b.ID] = *b
	return nil
}

func (r memBrands) GetByID(_ context.Context, id int64) (*domain.StoreBrand, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.brands[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &b, nil
}

func (r memBrands) List(_ context.Context, page domain.PageRequest) (domain.Page[domain.StoreBrand], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var items []domain.StoreBrand
	for _, id := range sortedKeys(r.m.brands) {
		if b := r.m.brands[id]; matches(page.Search, b.Name) {
			items = append(items, b)
		}
	}
	return paginate(items, page), nil
}

func (r memBrands) Update(_ context.Context, b *domain.StoreBrand) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.brands[b.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	b.CreatedAt = existing.CreatedAt
	r.m.brands[b.ID] = *b
	return nil
}

func (r memBrands) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.brands[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, l := range r.m.locations {
		if l.StoreBrandID == id {
			return foreignKeyViolation("store_locations_store_brand_id_fkey")
		}
	}
	delete(r.m.brands, id)
	return nil
}

func (r memBrands) HasLocations(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, l := range r.m.locations {
		if l.StoreBrandID == id {
			return true, nil
		}
	}
	return false, nil
}

// ---- store locations ----

func (m *MemStore) StoreLocations() repository.StoreLocationRepository { return memLocations{m} }

type memLocations struct{ m *MemStore }

func (r memLocations) withBrand(l domain.StoreLocation) domain.StoreLocation {
	l.BrandName = r.m.brands[l.StoreBrandID].Name
	return l
}

func (r memLocations) Create(_ context.Context, l *domain.StoreLocation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.brands[l.StoreBrandID]; !ok {
		return foreignKeyViolation("store_locations_store_brand_id_fkey")
	}
	l.ID = r.m.nextID()
	l.CreatedAt = time.Now()
	r.m.locations[l.ID] = *l
	return nil
}

func (r memLocations) GetByID(_ context.Context, id int64) (*domain.StoreLocation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.locations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	l = r.withBrand(l)
	return &l, nil
}

func (r memLocations) List(_ context.Context, page domain.PageRequest, brandID *int64) (domain.Page[domain.StoreLocation], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var items []domain.StoreLocation
	for _, id := range sortedKeys(r.m.locations) {
		l := r.m.locations[id]
		if brandID != nil && l.StoreBrandID != *brandID {
			continue
		}
		if matches(page.Search, l.Address) {
			items = append(items, r.withBrand(l))
		}
	}
	return paginate(items, page), nil
}

func (r memLocations) Update(_ context.Context, l *domain.StoreLocation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.locations[l.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	l.CreatedAt = existing.CreatedAt
	r.m.locations[l.ID] = *l
	return nil
}

func (r memLocations) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.locations[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.m.locations, id)
	return nil
}

func (r memLocations) HasEntries(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.entries {
		if e.StoreLocationID == id {
			return true, nil
		}
	}
	return false, nil
}

// ---- categories ----

func (m *MemStore) Categories() repository.CategoryRepository { return memCategories{m} }

type memCategories struct{ m *MemStore }

func (r memCategories) Create(_ context.Context, c *domain.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return uniqueViolation("uq_categories_name")
		}
	}
	c.ID = r.m.nextID()
	c.CreatedAt = time.Now()
	r.m.categories[c.ID] = *c
	return nil
}

func (r memCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r memCategories) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.categories {
		if strings.EqualFold(c.Name, name) {
			c := c
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memCategories) List(_ context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var items []domain.Category
	for _, id := range sortedKeys(r.m.categories) {
		if c := r.m.categories[id]; matches(page.Search, c.Name) {
			items = append(items, c)
		}
	}
	return paginate(items, page), nil
}

func (r memCategories) Update(_ context.Context, c *domain.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.categories[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.CreatedAt = existing.CreatedAt
	r.m.categories[c.ID] = *c
	return nil
}

func (r memCategories) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.m.categories, id)
	return nil
}

func (r memCategories) HasProducts(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.products {
		if p.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// ---- products ----

func (m *MemStore) Products() repository.ProductRepository { return memProducts{m} }

type memProducts struct{ m *MemStore }

func (r memProducts) withCategory(p domain.Product) domain.Product {
	c := r.m.categories[p.CategoryID]
	p.Category = &c
	return p
}

func (r memProducts) Create(_ context.Context, p *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.categories[p.CategoryID]; !ok {
		return foreignKeyViolation("products_category_id_fkey")
	}
	p.ID = r.m.nextID()
	p.CreatedAt = time.Now()
	p.Category = nil
	r.m.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p = r.withCategory(p)
	return &p, nil
}

func (r memProducts) FindDuplicate(_ context.Context, name, barcode string, excludeID int64) (*domain.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, id := range sortedKeys(r.m.products) {
		p := r.m.products[id]
		if p.ID != excludeID && (strings.EqualFold(p.Name, name) || p.Barcode == barcode) {
			p = r.withCategory(p)
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memProducts) List(_ context.Context, f domain.ProductFilter) (domain.Page[domain.Product], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var items []domain.Product
	for _, id := range sortedKeys(r.m.products) {
		p := r.m.products[id]
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.Barcode != "" && p.Barcode != f.Barcode {
			continue
		}
		if f.HasEntries != nil && r.hasEntries(p.ID) != *f.HasEntries {
			continue
		}
		if matches(f.Search, p.Name, p.Barcode) {
			items = append(items, r.withCategory(p))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		if f.OrderBy == domain.ProductOrderCreatedAt {
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		} else {
			less = items[i].Name < items[j].Name
		}
		if f.Desc {
			return !less
		}
		return less
	})
	return paginate(items, f.PageRequest), nil
}

func (r memProducts) hasEntries(id int64) bool {
	for _, e := range r.m.entries {
		if e.ProductID == id {
			return true
		}
	}
	return false
}

func (r memProducts) Update(_ context.Context, p *domain.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.products[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.CreatedAt = existing.CreatedAt
	p.ImageKey = existing.ImageKey
	stored := *p
	stored.Category = nil
	r.m.products[p.ID] = stored
	return nil
}

func (r memProducts) UpdateImage(_ context.Context, id int64, url, key *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.ImageURL, p.ImageKey = url, key
	r.m.products[id] = p
	return nil
}

func (r memProducts) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.m.products, id)
	return nil
}

func (r memProducts) HasEntries(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.hasEntries(id), nil
}

// ---- product entries ----

func (m *MemStore) ProductEntries() repository.ProductEntryRepository { return memEntries{m} }

type memEntries struct{ m *MemStore }

func (r memEntries) detail(e domain.ProductEntry) domain.ProductEntryDetail {
	p := r.m.products[e.ProductID]
	return domain.ProductEntryDetail{
		ProductEntry:   e,
		ProductName:    p.Name,
		ProductBarcode: p.Barcode,
		ProductImage:   p.ImageURL,
		StoreBrandName: r.m.brands[e.StoreBrandID].Name,
		StoreAddress:   r.m.locations[e.StoreLocationID].Address,
	}
}

func (r memEntries) Create(_ context.Context, e *domain.ProductEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[e.ProductID]; !ok {
		return foreignKeyViolation("product_entries_product_id_fkey")
	}
	if _, ok := r.m.locations[e.StoreLocationID]; !ok {
		return foreignKeyViolation("product_entries_store_location_id_fkey")
	}
	e.ID = r.m.nextID()
	e.CreatedAt = time.Now()
	r.m.entries[e.ID] = *e
	return nil
}

func (r memEntries) GetByID(_ context.Context, id int64) (*domain.ProductEntryDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	d := r.detail(e)
	return &d, nil
}

func (r memEntries) List(_ context.Context, page domain.PageRequest, scope domain.EntryScope) (domain.Page[domain.ProductEntryDetail], error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var items []domain.ProductEntryDetail
	keys := sortedKeys(r.m.entries)
	for i := len(keys) - 1; i >= 0; i-- {
		e := r.m.entries[keys[i]]
		if scope.ProductID != nil && e.ProductID != *scope.ProductID {
			continue
		}
		if scope.StoreBrandID != nil && e.StoreBrandID != *scope.StoreBrandID {
			continue
		}
		if scope.StoreLocationID != nil && e.StoreLocationID != *scope.StoreLocationID {
			continue
		}
		d := r.detail(e)
		if matches(page.Search, d.ProductName, d.StoreBrandName, d.StoreAddress) {
			items = append(items, d)
		}
	}
	return paginate(items, page), nil
}
