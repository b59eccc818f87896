package repository

import (
	"context"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.User], error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, full_name, password_hash, role, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, full_name, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.User], error) {
	page = page.Normalize()
	out := domain.Page[domain.User]{Page: page.Page, PerPage: page.PerPage}

	var f filter
	f.search(page.Search, "email", "full_name")

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM users`+f.where(), f.args)
	if err != nil {
		return out, err
	}
	out.TotalCount = total

	suffix, args := f.limit(page)
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users`+f.where()+` ORDER BY id`+suffix, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	out.Items = []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return out, err
		}
		out.Items = append(out.Items, u)
	}
	return out, rows.Err()
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	const query = `UPDATE users SET role=$1 WHERE id=$2`
	return expectOneRow(r.db.Exec(ctx, query, role, id))
}
