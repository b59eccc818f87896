package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// maxPrice is the first value NUMERIC(10,2) cannot hold.
var maxPrice = decimal.New(1, 8)

// ProductEntryInput records one observed price.
type ProductEntryInput struct {
	ProductID       int64
	StoreLocationID int64
	Price           decimal.Decimal
}

// ProductEntryService records and lists price observations.
type ProductEntryService struct {
	entries   repository.ProductEntryRepository
	products  repository.ProductRepository
	locations repository.StoreLocationRepository
	brands    repository.StoreBrandRepository
	events    publisher
}

func NewProductEntryService(
	entries repository.ProductEntryRepository,
	products repository.ProductRepository,
	locations repository.StoreLocationRepository,
	brands repository.StoreBrandRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *ProductEntryService {
	return &ProductEntryService{
		entries:   entries,
		products:  products,
		locations: locations,
		brands:    brands,
		events:    newPublisher(dispatcher, logger),
	}
}

// Create stores an entry. The store brand is taken from the location.
func (s *ProductEntryService) Create(ctx context.Context, actorID int64, in ProductEntryInput) (*domain.ProductEntryDetail, error) {
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, notFound(err, "product", in.ProductID)
	}
	loc, err := s.locations.GetByID(ctx, in.StoreLocationID)
	if err != nil {
		return nil, notFound(err, "store location", in.StoreLocationID)
	}

	entry := &domain.ProductEntry{
		ProductID:       in.ProductID,
		StoreBrandID:    loc.StoreBrandID,
		StoreLocationID: loc.ID,
		Price:           in.Price.Round(2),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.EventProductEntryCreated, entry.ID, actorID, events.ProductEntryCreatedPayload{
		ProductID:       entry.ProductID,
		StoreLocationID: entry.StoreLocationID,
		Price:           entry.Price.StringFixed(2),
	})
	return s.Get(ctx, entry.ID)
}

func (s *ProductEntryService) Get(ctx context.Context, id int64) (*domain.ProductEntryDetail, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product entry", id)
	}
	return e, nil
}

func (s *ProductEntryService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.ProductEntryDetail], error) {
	return s.entries.List(ctx, page.Normalize(), domain.EntryScope{})
}

func (s *ProductEntryService) ListByProduct(ctx context.Context, productID int64, page domain.PageRequest) (domain.Page[domain.ProductEntryDetail], error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return domain.Page[domain.ProductEntryDetail]{}, notFound(err, "product", productID)
	}
	return s.entries.List(ctx, page.Normalize(), domain.EntryScope{ProductID: &productID})
}

func (s *ProductEntryService) ListByStoreBrand(ctx context.Context, brandID int64, page domain.PageRequest) (domain.Page[domain.ProductEntryDetail], error) {
	if _, err := s.brands.GetByID(ctx, brandID); err != nil {
		return domain.Page[domain.ProductEntryDetail]{}, notFound(err, "store brand", brandID)
	}
	return s.entries.List(ctx, page.Normalize(), domain.EntryScope{StoreBrandID: &brandID})
}

func (s *ProductEntryService) ListByStoreLocation(ctx context.Context, locationID int64, page domain.PageRequest) (domain.Page[domain.ProductEntryDetail], error) {
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		return domain.Page[domain.ProductEntryDetail]{}, notFound(err, "store location", locationID)
	}
	return s.entries.List(ctx, page.Normalize(), domain.EntryScope{StoreLocationID: &locationID})
}

func validatePrice(price decimal.Decimal) error {
	switch {
	case !price.IsPositive():
		return apperrors.NewValidationError("invalid input", map[string]any{"price": "must be greater than 0"})
	case !price.Equal(price.Round(2)):
		return apperrors.NewValidationError("invalid input", map[string]any{"price": "must have at most 2 decimal places"})
	case price.GreaterThanOrEqual(maxPrice):
		return apperrors.NewValidationError("invalid input", map[string]any{"price": "is too large"})
	}
	return nil
}
