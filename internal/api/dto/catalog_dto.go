package dto

import (
	"time"

	"github.com/cijene-me/cijene-api/internal/domain"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type CategoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

type ProductRequest struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Barcode    string  `json:"barcode" validate:"required,max=64"`
	CategoryID int64   `json:"category_id" validate:"required,min=1"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url"`
}

type ProductResponse struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Barcode    string            `json:"barcode"`
	ImageURL   *string           `json:"image_url"`
	CategoryID int64             `json:"category_id"`
	Category   *CategoryResponse `json:"category,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	out := ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Barcode:    p.Barcode,
		ImageURL:   p.ImageURL,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
	}
	if p.Category != nil {
		c := NewCategoryResponse(*p.Category)
		out.Category = &c
	}
	return out
}

// ProductListQuery filters GET /products.
type ProductListQuery struct {
	Page       int    `query:"page" validate:"omitempty,min=1,max=1000000"`
	PerPage    int    `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search     string `query:"search" validate:"max=255"`
	CategoryID *int64 `query:"category_id" validate:"omitempty,min=1"`
	Barcode    string `query:"barcode" validate:"max=64"`
	HasEntries *bool  `query:"has_entries"`
	OrderBy    string `query:"order_by" validate:"omitempty,oneof=name created_at"`
	Order      string `query:"order" validate:"omitempty,oneof=asc desc"`
}

func (q ProductListQuery) Filter() domain.ProductFilter {
	return domain.ProductFilter{
		PageRequest: PageQuery{Page: q.Page, PerPage: q.PerPage, Search: q.Search}.PageRequest(),
		CategoryID:  q.CategoryID,
		Barcode:     q.Barcode,
		HasEntries:  q.HasEntries,
		OrderBy:     q.OrderBy,
		Desc:        q.Order == "desc",
	}
}
