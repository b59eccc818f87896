package domain

import "time"

type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Product is a catalog item. Category is filled on reads that join it.
type Product struct {
	ID         int64
	Name       string
	Barcode    string
	ImageURL   *string
	ImageKey   *string
	CategoryID int64
	Category   *Category
	CreatedAt  time.Time
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	PageRequest
	CategoryID *int64
	Barcode    string
	HasEntries *bool
	OrderBy    string
	Desc       bool
}

// Allowed product sort columns.
const (
	ProductOrderName      = "name"
	ProductOrderCreatedAt = "created_at"
)
