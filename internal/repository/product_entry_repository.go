package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// ProductEntryRepository persists price observations. Prices travel as text so
// NUMERIC precision is never routed through float64.
type ProductEntryRepository interface {
	Create(ctx context.Context, e *domain.ProductEntry) error
	GetByID(ctx context.Context, id int64) (*domain.ProductEntryDetail, error)
	List(ctx context.Context, page domain.PageRequest, scope domain.EntryScope) (domain.Page[domain.ProductEntryDetail], error)
}

type productEntryRepository struct {
	db DBTX
}

func NewProductEntryRepository(db DBTX) ProductEntryRepository {
	return &productEntryRepository{db: db}
}

const productEntrySelect = `
        SELECT e.id, e.product_id, e.store_brand_id, e.store_location_id, e.price::text, e.created_at,
               p.name, p.barcode, p.image_url, b.name, l.address
        FROM product_entries e
        JOIN products p ON p.id = e.product_id
        JOIN store_brands b ON b.id = e.store_brand_id
        JOIN store_locations l ON l.id = e.store_location_id`

func scanProductEntry(row rowScanner) (*domain.ProductEntryDetail, error) {
	var d domain.ProductEntryDetail
	var price string
	if err := row.Scan(
		&d.ID,
		&d.ProductID,
		&d.StoreBrandID,
		&d.StoreLocationID,
		&price,
		&d.CreatedAt,
		&d.ProductName,
		&d.ProductBarcode,
		&d.ProductImage,
		&d.StoreBrandName,
		&d.StoreAddress,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	d.Price = parsed
	return &d, nil
}

func (r *productEntryRepository) Create(ctx context.Context, e *domain.ProductEntry) error {
	const query = `
        INSERT INTO product_entries (product_id, store_brand_id, store_location_id, price)
        VALUES ($1, $2, $3, $4::numeric)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		e.ProductID,
		e.StoreBrandID,
		e.StoreLocationID,
		e.Price.StringFixed(2),
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *productEntryRepository) GetByID(ctx context.Context, id int64) (*domain.ProductEntryDetail, error) {
	return scanProductEntry(r.db.QueryRow(ctx, productEntrySelect+` WHERE e.id=$1`, id))
}

func (r *productEntryRepository) List(ctx context.Context, page domain.PageRequest, scope domain.EntryScope) (domain.Page[domain.ProductEntryDetail], error) {
	page = page.Normalize()
	out := domain.Page[domain.ProductEntryDetail]{Page: page.Page, PerPage: page.PerPage}

	var f filter
	if scope.ProductID != nil {
		f.add("e.product_id=$%d", *scope.ProductID)
	}
	if scope.StoreBrandID != nil {
		f.add("e.store_brand_id=$%d", *scope.StoreBrandID)
	}
	if scope.StoreLocationID != nil {
		f.add("e.store_location_id=$%d", *scope.StoreLocationID)
	}
	f.search(page.Search, "p.name", "b.name", "l.address")

	const countFrom = `
        SELECT COUNT(*)
        FROM product_entries e
        JOIN products p ON p.id = e.product_id
        JOIN store_brands b ON b.id = e.store_brand_id
        JOIN store_locations l ON l.id = e.store_location_id`
	total, err := count(ctx, r.db, countFrom+f.where(), f.args)
	if err != nil {
		return out, err
	}
	out.TotalCount = total

	suffix, args := f.limit(page)
	rows, err := r.db.Query(ctx, productEntrySelect+f.where()+` ORDER BY e.created_at DESC, e.id DESC`+suffix, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	out.Items = []domain.ProductEntryDetail{}
	for rows.Next() {
		d, err := scanProductEntry(rows)
		if err != nil {
			return out, err
		}
		out.Items = append(out.Items, *d)
	}
	return out, rows.Err()
}
