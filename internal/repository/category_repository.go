package repository

import (
	"context"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, cat *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error)
	Update(ctx context.Context, cat *domain.Category) error
	Delete(ctx context.Context, id int64) error
	HasProducts(ctx context.Context, id int64) (bool, error)
}

type categoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, cat *domain.Category) error {
	const query = `INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, cat.Name).Scan(&cat.ID, &cat.CreatedAt)
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.fetchSingle(ctx, `SELECT id, name, created_at FROM categories WHERE id=$1`, id)
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.fetchSingle(ctx, `SELECT id, name, created_at FROM categories WHERE LOWER(name)=LOWER($1)`, name)
}

func (r *categoryRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	page = page.Normalize()
	out := domain.Page[domain.Category]{Page: page.Page, PerPage: page.PerPage}

	var f filter
	f.search(page.Search, "name")

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM categories`+f.where(), f.args)
	if err != nil {
		return out, err
	}
	out.TotalCount = total

	suffix, args := f.limit(page)
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM categories`+f.where()+` ORDER BY name, id`+suffix, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	out.Items = []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return out, err
		}
		out.Items = append(out.Items, c)
	}
	return out, rows.Err()
}

func (r *categoryRepository) Update(ctx context.Context, cat *domain.Category) error {
	const query = `UPDATE categories SET name=$1 WHERE id=$2 RETURNING created_at`
	return r.db.QueryRow(ctx, query, cat.Name, cat.ID).Scan(&cat.CreatedAt)
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return expectOneRow(r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id))
}

func (r *categoryRepository) HasProducts(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM products WHERE category_id=$1)`, id)
}
