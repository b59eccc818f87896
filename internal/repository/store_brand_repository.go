package repository

import (
	"context"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// StoreBrandRepository persists store brands.
type StoreBrandRepository interface {
	Create(ctx context.Context, brand *domain.StoreBrand) error
	GetByID(ctx context.Context, id int64) (*domain.StoreBrand, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.StoreBrand], error)
	Update(ctx context.Context, brand *domain.StoreBrand) error
	Delete(ctx context.Context, id int64) error
	HasLocations(ctx context.Context, id int64) (bool, error)
}

type storeBrandRepository struct {
	db DBTX
}

func NewStoreBrandRepository(db DBTX) StoreBrandRepository {
	return &storeBrandRepository{db: db}
}

func (r *storeBrandRepository) Create(ctx context.Context, brand *domain.StoreBrand) error {
	const query = `INSERT INTO store_brands (name) VALUES ($1) RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, brand.Name).Scan(&brand.ID, &brand.CreatedAt)
}

func (r *storeBrandRepository) GetByID(ctx context.Context, id int64) (*domain.StoreBrand, error) {
	const query = `SELECT id, name, created_at FROM store_brands WHERE id=$1`
	var b domain.StoreBrand
	if err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *storeBrandRepository) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.StoreBrand], error) {
	page = page.Normalize()
	out := domain.Page[domain.StoreBrand]{Page: page.Page, PerPage: page.PerPage}

	var f filter
	f.search(page.Search, "name")

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM store_brands`+f.where(), f.args)
	if err != nil {
		return out, err
	}
	out.TotalCount = total

	suffix, args := f.limit(page)
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM store_brands`+f.where()+` ORDER BY name, id`+suffix, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	out.Items = []domain.StoreBrand{}
	for rows.Next() {
		var b domain.StoreBrand
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return out, err
		}
		out.Items = append(out.Items, b)
	}
	return out, rows.Err()
}

func (r *storeBrandRepository) Update(ctx context.Context, brand *domain.StoreBrand) error {
	const query = `UPDATE store_brands SET name=$1 WHERE id=$2 RETURNING created_at`
	return r.db.QueryRow(ctx, query, brand.Name, brand.ID).Scan(&brand.CreatedAt)
}

func (r *storeBrandRepository) Delete(ctx context.Context, id int64) error {
	return expectOneRow(r.db.Exec(ctx, `DELETE FROM store_brands WHERE id=$1`, id))
}

func (r *storeBrandRepository) HasLocations(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM store_locations WHERE store_brand_id=$1)`, id)
}
