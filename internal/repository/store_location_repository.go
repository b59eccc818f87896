package repository

import (
	"context"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// StoreLocationRepository persists store locations. Reads join the brand name.
type StoreLocationRepository interface {
	Create(ctx context.Context, loc *domain.StoreLocation) error
	GetByID(ctx context.Context, id int64) (*domain.StoreLocation, error)
	List(ctx context.Context, page domain.PageRequest, brandID *int64) (domain.Page[domain.StoreLocation], error)
	Update(ctx context.Context, loc *domain.StoreLocation) error
	Delete(ctx context.Context, id int64) error
	HasEntries(ctx context.Context, id int64) (bool, error)
}

type storeLocationRepository struct {
	db DBTX
}

func NewStoreLocationRepository(db DBTX) StoreLocationRepository {
	return &storeLocationRepository{db: db}
}

const storeLocationSelect = `
        SELECT l.id, l.store_brand_id, l.address, b.name, l.created_at
        FROM store_locations l
        JOIN store_brands b ON b.id = l.store_brand_id`

func (r *storeLocationRepository) Create(ctx context.Context, loc *domain.StoreLocation) error {
	const query = `
        INSERT INTO store_locations (store_brand_id, address)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, loc.StoreBrandID, loc.Address).Scan(&loc.ID, &loc.CreatedAt)
}

func (r *storeLocationRepository) GetByID(ctx context.Context, id int64) (*domain.StoreLocation, error) {
	var l domain.StoreLocation
	if err := r.db.QueryRow(ctx, storeLocationSelect+` WHERE l.id=$1`, id).Scan(
		&l.ID, &l.StoreBrandID, &l.Address, &l.BrandName, &l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *storeLocationRepository) List(ctx context.Context, page domain.PageRequest, brandID *int64) (domain.Page[domain.StoreLocation], error) {
	page = page.Normalize()
	out := domain.Page[domain.StoreLocation]{Page: page.Page, PerPage: page.PerPage}

	var f filter
	if brandID != nil {
		f.add("l.store_brand_id=$%d", *brandID)
	}
	f.search(page.Search, "l.address")

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM store_locations l`+f.where(), f.args)
	if err != nil {
		return out, err
	}
	out.TotalCount = total

	suffix, args := f.limit(page)
	rows, err := r.db.Query(ctx, storeLocationSelect+f.where()+` ORDER BY l.id`+suffix, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	out.Items = []domain.StoreLocation{}
	for rows.Next() {
		var l domain.StoreLocation
		if err := rows.Scan(&l.ID, &l.StoreBrandID, &l.Address, &l.BrandName, &l.CreatedAt); err != nil {
			return out, err
		}
		out.Items = append(out.Items, l)
	}
	return out, rows.Err()
}

func (r *storeLocationRepository) Update(ctx context.Context, loc *domain.StoreLocation) error {
	const query = `
        UPDATE store_locations SET store_brand_id=$1, address=$2
        WHERE id=$3
        RETURNING created_at`
	return r.db.QueryRow(ctx, query, loc.StoreBrandID, loc.Address, loc.ID).Scan(&loc.CreatedAt)
}

func (r *storeLocationRepository) Delete(ctx context.Context, id int64) error {
	return expectOneRow(r.db.Exec(ctx, `DELETE FROM store_locations WHERE id=$1`, id))
}

func (r *storeLocationRepository) HasEntries(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM product_entries WHERE store_location_id=$1)`, id)
}
