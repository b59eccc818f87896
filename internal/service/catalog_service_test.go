package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/media"
	"github.com/cijene-me/cijene-api/internal/testutil"
)

const actor = int64(99)

type catalog struct {
	store     *testutil.MemStore
	rec       *recorder
	brands    *StoreBrandService
	locations *StoreLocationService
	cats      *CategoryService
	products  *ProductService
	entries   *ProductEntryService
}

func newCatalog(t *testing.T, store media.Store) *catalog {
	t.Helper()
	mem := testutil.NewMemStore()
	d, rec := newRecorder()
	return &catalog{
		store:     mem,
		rec:       rec,
		brands:    NewStoreBrandService(mem.StoreBrands(), d, nil),
		locations: NewStoreLocationService(mem.StoreLocations(), mem.StoreBrands(), d, nil),
		cats:      NewCategoryService(mem.Categories(), d, nil),
		products: NewProductService(ProductDependencies{
			ProductRepo:  mem.Products(),
			CategoryRepo: mem.Categories(),
			Media:        store,
			Dispatcher:   d,
		}),
		entries: NewProductEntryService(mem.ProductEntries(), mem.Products(), mem.StoreLocations(), mem.StoreBrands(), d, nil),
	}
}

// seed creates brand -> location and category -> product.
func (c *catalog) seed(t *testing.T) (*domain.StoreBrand, *domain.StoreLocation, *domain.Product) {
	t.Helper()
	ctx := context.Background()
	brand, err := c.brands.Create(ctx, actor, "Konzum")
	require.NoError(t, err)
	loc, err := c.locations.Create(ctx, actor, StoreLocationInput{StoreBrandID: brand.ID, Address: "Ilica 1, Zagreb"})
	require.NoError(t, err)
	cat, err := c.cats.Create(ctx, actor, "Dairy")
	require.NoError(t, err)
	p, err := c.products.Create(ctx, actor, ProductInput{Name: "Milk 1L", Barcode: "3850100", CategoryID: cat.ID})
	require.NoError(t, err)
	return brand, loc, p
}

func TestStoreBrandService_CRUD(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()

	_, err := c.brands.Create(ctx, actor, "   ")
	requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	brand, err := c.brands.Create(ctx, actor, " Lidl ")
	require.NoError(t, err)
	assert.Equal(t, "Lidl", brand.Name)

	updated, err := c.brands.Update(ctx, actor, brand.ID, "Lidl Hrvatska")
	require.NoError(t, err)
	assert.Equal(t, "Lidl Hrvatska", updated.Name)

	page, err := c.brands.List(ctx, domain.PageRequest{Search: "hrv"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, domain.DefaultPerPage, page.PerPage)

	require.NoError(t, c.brands.Delete(ctx, actor, brand.ID))
	_, err = c.brands.Get(ctx, brand.ID)
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)

	_, err = c.brands.Update(ctx, actor, brand.ID, "Ghost")
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)

	assert.Equal(t, []events.EventType{
		events.EventStoreBrandChanged,
		events.EventStoreBrandChanged,
		events.EventStoreBrandChanged,
	}, c.rec.types())
	assert.Equal(t, events.ChangedPayload{Action: events.ActionDeleted}, c.rec.last().Payload)
	assert.Equal(t, actor, c.rec.last().ActorID)
}

func TestDeletesRejectedWhileReferenced(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()
	brand, loc, p := c.seed(t)

	_, err := c.entries.Create(ctx, actor, ProductEntryInput{
		ProductID:       p.ID,
		StoreLocationID: loc.ID,
		Price:           decimal.RequireFromString("1.29"),
	})
	require.NoError(t, err)

	requireCode(t, c.brands.Delete(ctx, actor, brand.ID), "CONFLICT", http.StatusConflict)
	requireCode(t, c.locations.Delete(ctx, actor, loc.ID), "CONFLICT", http.StatusConflict)
	requireCode(t, c.cats.Delete(ctx, actor, p.CategoryID), "CONFLICT", http.StatusConflict)
	requireCode(t, c.products.Delete(ctx, actor, p.ID), "CONFLICT", http.StatusConflict)

	requireCode(t, c.brands.Delete(ctx, actor, 12345), "NOT_FOUND", http.StatusNotFound)
}

func TestStoreLocationService_BrandMustExist(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()

	_, err := c.locations.Create(ctx, actor, StoreLocationInput{StoreBrandID: 777, Address: "Nowhere 1"})
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)

	brand, loc, _ := c.seed(t)
	assert.Equal(t, "Konzum", loc.BrandName)

	page, err := c.locations.ListByBrand(ctx, brand.ID, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, loc.ID, page.Items[0].ID)

	_, err = c.locations.ListByBrand(ctx, 777, domain.PageRequest{})
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestCategoryService_NamesUniqueIgnoringCase(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()

	dairy, err := c.cats.Create(ctx, actor, "Dairy")
	require.NoError(t, err)
	_, err = c.cats.Create(ctx, actor, "dAIRY")
	requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	bread, err := c.cats.Create(ctx, actor, "Bread")
	require.NoError(t, err)
	_, err = c.cats.Update(ctx, actor, bread.ID, "DAIRY")
	requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	renamed, err := c.cats.Update(ctx, actor, dairy.ID, "dairy")
	require.NoError(t, err)
	assert.Equal(t, "dairy", renamed.Name)
}

func TestProductService_Validation(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()
	_, _, milk := c.seed(t)

	_, err := c.products.Create(ctx, actor, ProductInput{Name: "Bread", Barcode: "1", CategoryID: 4242})
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)

	_, err = c.products.Create(ctx, actor, ProductInput{Name: "MILK 1l", Barcode: "999", CategoryID: milk.CategoryID})
	de := requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
	assert.Contains(t, de.Details, "name")

	_, err = c.products.Create(ctx, actor, ProductInput{Name: "Other", Barcode: milk.Barcode, CategoryID: milk.CategoryID})
	de = requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
	assert.Contains(t, de.Details, "barcode")

	_, err = c.products.List(ctx, domain.ProductFilter{OrderBy: "price"})
	requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	updated, err := c.products.Update(ctx, actor, milk.ID, ProductInput{Name: "Milk 1L", Barcode: milk.Barcode, CategoryID: milk.CategoryID})
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Dairy", updated.Category.Name)
}

func TestProductEntryService_CreateAndList(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()
	brand, loc, p := c.seed(t)

	for _, bad := range []string{"0", "-1", "1.234", "100000000"} {
		_, err := c.entries.Create(ctx, actor, ProductEntryInput{
			ProductID:       p.ID,
			StoreLocationID: loc.ID,
			Price:           decimal.RequireFromString(bad),
		})
		requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
	}

	_, err := c.entries.Create(ctx, actor, ProductEntryInput{ProductID: p.ID, StoreLocationID: 5555, Price: decimal.NewFromInt(1)})
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)

	entry, err := c.entries.Create(ctx, actor, ProductEntryInput{
		ProductID:       p.ID,
		StoreLocationID: loc.ID,
		Price:           decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, brand.ID, entry.StoreBrandID)
	assert.Equal(t, "2.50", entry.Price.StringFixed(2))

	last := c.rec.last()
	assert.Equal(t, events.EventProductEntryCreated, last.Type)
	assert.Equal(t, "2.50", last.Payload.(events.ProductEntryCreatedPayload).Price)

	byBrand, err := c.entries.ListByStoreBrand(ctx, brand.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byBrand.TotalCount)

	byProduct, err := c.entries.ListByProduct(ctx, p.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byProduct.TotalCount)

	_, err = c.entries.ListByStoreLocation(ctx, 5555, domain.PageRequest{})
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)
}

type memMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failUp  bool
}

func (m *memMedia) Upload(_ context.Context, key, _ string, r io.Reader, _ int64) (media.Object, error) {
	if m.failUp {
		return media.Object{}, errors.New("upload failed")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return media.Object{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return media.Object{Key: key, URL: "https://img.test/" + key}, nil
}

func (m *memMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func TestProductService_UploadImage(t *testing.T) {
	store := &memMedia{}
	c := newCatalog(t, store)
	ctx := context.Background()
	_, _, p := c.seed(t)
	png := []byte("\x89PNG\r\n\x1a\nrest")

	_, err := c.products.UploadImage(ctx, actor, p.ID, "application/pdf", bytes.NewReader(png), int64(len(png)))
	requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)

	first, err := c.products.UploadImage(ctx, actor, p.ID, "image/png", bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	require.NotNil(t, first.ImageKey)
	require.NotNil(t, first.ImageURL)
	assert.Equal(t, "https://img.test/"+*first.ImageKey, *first.ImageURL)

	second, err := c.products.UploadImage(ctx, actor, p.ID, "image/png", bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	assert.NotEqual(t, *first.ImageKey, *second.ImageKey)
	assert.Equal(t, []string{*first.ImageKey}, store.deleted)

	_, err = c.products.UploadImage(ctx, actor, 4242, "image/png", bytes.NewReader(png), int64(len(png)))
	requireCode(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestProductService_UploadImageWithoutMedia(t *testing.T) {
	c := newCatalog(t, nil)
	_, _, p := c.seed(t)

	_, err := c.products.UploadImage(context.Background(), actor, p.ID, "image/png", bytes.NewReader([]byte("x")), 1)
	requireCode(t, err, "MEDIA_UNAVAILABLE", http.StatusServiceUnavailable)
}
