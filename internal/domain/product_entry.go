package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductEntry is one observed price of a product at a store location.
type ProductEntry struct {
	ID              int64
	ProductID       int64
	StoreBrandID    int64
	StoreLocationID int64
	Price           decimal.Decimal
	CreatedAt       time.Time
}

// ProductEntryDetail is a ProductEntry joined with its product and store.
type ProductEntryDetail struct {
	ProductEntry
	ProductName    string
	ProductBarcode string
	ProductImage   *string
	StoreBrandName string
	StoreAddress   string
}

// EntryScope restricts an entry listing to one product, brand or location.
type EntryScope struct {
	ProductID       *int64
	StoreBrandID    *int64
	StoreLocationID *int64
}
