package dto

import "github.com/cijene-me/cijene-api/internal/domain"

// DataResponse wraps a single resource.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps one page of a listing.
type ListResponse[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
}

// NewListResponse converts a domain page with fn.
func NewListResponse[S, T any](page domain.Page[S], fn func(S) T) ListResponse[T] {
	out := ListResponse[T]{
		Data:       make([]T, 0, len(page.Items)),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
	}
	for _, item := range page.Items {
		out.Data = append(out.Data, fn(item))
	}
	return out
}

// PageQuery is the pagination part of listing query strings.
type PageQuery struct {
	Page    int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search  string `query:"search" validate:"max=255"`
}

func (q PageQuery) PageRequest() domain.PageRequest {
	return domain.PageRequest{Page: q.Page, PerPage: q.PerPage, Search: q.Search}.Normalize()
}
