package domain

import "time"

type StoreBrand struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// StoreLocation is a physical store of a brand. BrandName is filled on reads.
type StoreLocation struct {
	ID           int64
	StoreBrandID int64
	Address      string
	BrandName    string
	CreatedAt    time.Time
}
