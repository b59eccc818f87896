package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// filter accumulates WHERE clauses with positional arguments.
type filter struct {
	clauses []string
	args    []any
}

// add appends a clause; format must contain exactly one %d for the placeholder index.
func (f *filter) add(format string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, fmt.Sprintf(format, len(f.args)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// search adds a case-insensitive substring match across columns. LIKE wildcards in
// term match literally.
func (f *filter) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	f.args = append(f.args, "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
	n := len(f.args)
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf(`LOWER(%s) LIKE $%d ESCAPE '\'`, col, n)
	}
	f.clauses = append(f.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// limit returns the LIMIT/OFFSET suffix and the full argument list for it.
func (f *filter) limit(p domain.PageRequest) (string, []any) {
	args := make([]any, 0, len(f.args)+2)
	args = append(args, f.args...)
	args = append(args, p.PerPage, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(f.args)+1, len(f.args)+2), args
}

func count(ctx context.Context, db DBTX, query string, args []any) (int64, error) {
	var total int64
	if err := db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func exists(ctx context.Context, db DBTX, query string, args ...any) (bool, error) {
	var ok bool
	if err := db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func expectOneRow(cmd pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
