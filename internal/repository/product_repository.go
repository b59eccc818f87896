package repository

import (
	"context"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// ProductRepository persists products. Reads join the category.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// FindDuplicate returns a product other than excludeID sharing the name
	// (case-insensitive) or the barcode, or pgx.ErrNoRows.
	FindDuplicate(ctx context.Context, name, barcode string, excludeID int64) (*domain.Product, error)
	List(ctx context.Context, f domain.ProductFilter) (domain.Page[domain.Product], error)
	Update(ctx context.Context, p *domain.Product) error
	UpdateImage(ctx context.Context, id int64, url, key *string) error
	Delete(ctx context.Context, id int64) error
	HasEntries(ctx context.Context, id int64) (bool, error)
}

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `
        SELECT p.id, p.name, p.barcode, p.image_url, p.image_key, p.category_id, p.created_at,
               c.id, c.name, c.created_at
        FROM products p
        JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var c domain.Category
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Barcode,
		&p.ImageURL,
		&p.ImageKey,
		&p.CategoryID,
		&p.CreatedAt,
		&c.ID,
		&c.Name,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Category = &c
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	const query = `
        INSERT INTO products (name, barcode, image_url, category_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, p.Name, p.Barcode, p.ImageURL, p.CategoryID).Scan(&p.ID, &p.CreatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id=$1`, id))
}

func (r *productRepository) FindDuplicate(ctx context.Context, name, barcode string, excludeID int64) (*domain.Product, error) {
	const query = productSelect + `
        WHERE (LOWER(p.name)=LOWER($1) OR p.barcode=$2) AND p.id<>$3
        LIMIT 1`
	return scanProduct(r.db.QueryRow(ctx, query, name, barcode, excludeID))
}

func (r *productRepository) List(ctx context.Context, pf domain.ProductFilter) (domain.Page[domain.Product], error) {
	page := pf.PageRequest.Normalize()
	out := domain.Page[domain.Product]{Page: page.Page, PerPage: page.PerPage}

	var f filter
	f.search(page.Search, "p.name", "p.barcode")
	if pf.CategoryID != nil {
		f.add("p.category_id=$%d", *pf.CategoryID)
	}
	if pf.Barcode != "" {
		f.add("p.barcode=$%d", pf.Barcode)
	}
	if pf.HasEntries != nil {
		clause := "EXISTS (SELECT 1 FROM product_entries e WHERE e.product_id = p.id)"
		if !*pf.HasEntries {
			clause = "NOT " + clause
		}
		f.clauses = append(f.clauses, clause)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM products p`+f.where(), f.args)
	if err != nil {
		return out, err
	}
	out.TotalCount = total

	order := " ORDER BY p.name"
	if pf.OrderBy == domain.ProductOrderCreatedAt {
		order = " ORDER BY p.created_at"
	}
	if pf.Desc {
		order += " DESC"
	}
	order += ", p.id"

	suffix, args := f.limit(page)
	rows, err := r.db.Query(ctx, productSelect+f.where()+order+suffix, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	out.Items = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return out, err
		}
		out.Items = append(out.Items, *p)
	}
	return out, rows.Err()
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, barcode=$2, image_url=$3, category_id=$4
        WHERE id=$5
        RETURNING created_at, image_key`
	return r.db.QueryRow(ctx, query, p.Name, p.Barcode, p.ImageURL, p.CategoryID, p.ID).
		Scan(&p.CreatedAt, &p.ImageKey)
}

func (r *productRepository) UpdateImage(ctx context.Context, id int64, url, key *string) error {
	const query = `UPDATE products SET image_url=$1, image_key=$2 WHERE id=$3`
	return expectOneRow(r.db.Exec(ctx, query, url, key, id))
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return expectOneRow(r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id))
}

func (r *productRepository) HasEntries(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM product_entries WHERE product_id=$1)`, id)
}
