package domain

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	MaxPage        = 1_000_000
)

// PageRequest carries 1-based pagination and an optional free-text search.
type PageRequest struct {
	Page    int
	PerPage int
	Search  string
}

// Normalize clamps page and per_page into their valid ranges.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is one slice of a listing plus the total row count.
type Page[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	PerPage    int
}
