package dto

import (
	"time"

	"github.com/cijene-me/cijene-api/internal/domain"
)

type StoreBrandRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type StoreBrandResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewStoreBrandResponse(b domain.StoreBrand) StoreBrandResponse {
	return StoreBrandResponse{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt}
}

type StoreLocationRequest struct {
	StoreBrandID int64  `json:"store_brand_id" validate:"required,min=1"`
	Address      string `json:"address" validate:"required,max=500"`
}

// StoreLocationResponse includes the brand name.
type StoreLocationResponse struct {
	ID             int64     `json:"id"`
	StoreBrandID   int64     `json:"store_brand_id"`
	StoreBrandName string    `json:"store_brand_name"`
	Address        string    `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewStoreLocationResponse(l domain.StoreLocation) StoreLocationResponse {
	return StoreLocationResponse{
		ID:             l.ID,
		StoreBrandID:   l.StoreBrandID,
		StoreBrandName: l.BrandName,
		Address:        l.Address,
		CreatedAt:      l.CreatedAt,
	}
}

// LocationListQuery filters GET /store-locations.
type LocationListQuery struct {
	Page         int    `query:"page" validate:"omitempty,min=1"`
	PerPage      int    `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search       string `query:"search" validate:"max=255"`
	StoreBrandID *int64 `query:"store_brand_id" validate:"omitempty,min=1"`
}

func (q LocationListQuery) PageRequest() domain.PageRequest {
	return PageQuery{Page: q.Page, PerPage: q.PerPage, Search: q.Search}.PageRequest()
}
