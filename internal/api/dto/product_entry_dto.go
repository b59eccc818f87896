package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// ProductEntryRequest accepts price as a JSON number or string.
type ProductEntryRequest struct {
	ProductID       int64           `json:"product_id" validate:"required,min=1"`
	StoreLocationID int64           `json:"store_location_id" validate:"required,min=1"`
	Price           decimal.Decimal `json:"price"`
}

// ProductEntryResponse carries the entry with product and store details. Price is
// rendered with two decimals.
type ProductEntryResponse struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductBarcode  string    `json:"product_barcode"`
	ProductImageURL *string   `json:"product_image_url"`
	StoreBrandID    int64     `json:"store_brand_id"`
	StoreBrandName  string    `json:"store_brand_name"`
	StoreLocationID int64     `json:"store_location_id"`
	StoreAddress    string    `json:"store_address"`
	Price           string    `json:"price"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewProductEntryResponse(e domain.ProductEntryDetail) ProductEntryResponse {
	return ProductEntryResponse{
		ID:              e.ID,
		ProductID:       e.ProductID,
		ProductName:     e.ProductName,
		ProductBarcode:  e.ProductBarcode,
		ProductImageURL: e.ProductImage,
		StoreBrandID:    e.StoreBrandID,
		StoreBrandName:  e.StoreBrandName,
		StoreLocationID: e.StoreLocationID,
		StoreAddress:    e.StoreAddress,
		Price:           e.Price.StringFixed(2),
		CreatedAt:       e.CreatedAt,
	}
}
