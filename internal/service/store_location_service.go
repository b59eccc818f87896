package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// StoreLocationInput is the writable part of a location.
type StoreLocationInput struct {
	StoreBrandID int64
	Address      string
}

// StoreLocationService manages physical stores.
type StoreLocationService struct {
	locations repository.StoreLocationRepository
	brands    repository.StoreBrandRepository
	events    publisher
}

func NewStoreLocationService(
	locations repository.StoreLocationRepository,
	brands repository.StoreBrandRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *StoreLocationService {
	return &StoreLocationService{locations: locations, brands: brands, events: newPublisher(dispatcher, logger)}
}

func (s *StoreLocationService) Create(ctx context.Context, actorID int64, in StoreLocationInput) (*domain.StoreLocation, error) {
	loc, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	s.events.changed(ctx, events.EventStoreLocationChanged, loc.ID, actorID, events.ActionCreated)
	return s.Get(ctx, loc.ID)
}

func (s *StoreLocationService) Get(ctx context.Context, id int64) (*domain.StoreLocation, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "store location", id)
	}
	return loc, nil
}

func (s *StoreLocationService) List(ctx context.Context, page domain.PageRequest, brandID *int64) (domain.Page[domain.StoreLocation], error) {
	return s.locations.List(ctx, page.Normalize(), brandID)
}

// ListByBrand lists the locations of one brand; an unknown brand is NOT_FOUND.
func (s *StoreLocationService) ListByBrand(ctx context.Context, brandID int64, page domain.PageRequest) (domain.Page[domain.StoreLocation], error) {
	if _, err := s.brands.GetByID(ctx, brandID); err != nil {
		return domain.Page[domain.StoreLocation]{}, notFound(err, "store brand", brandID)
	}
	return s.locations.List(ctx, page.Normalize(), &brandID)
}

func (s *StoreLocationService) Update(ctx context.Context, actorID, id int64, in StoreLocationInput) (*domain.StoreLocation, error) {
	loc, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	loc.ID = id
	if err := s.locations.Update(ctx, loc); err != nil {
		return nil, notFound(err, "store location", id)
	}
	s.events.changed(ctx, events.EventStoreLocationChanged, id, actorID, events.ActionUpdated)
	return s.Get(ctx, id)
}

// Delete removes a location that has no product entries.
func (s *StoreLocationService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inUse, err := s.locations.HasEntries(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflict("store location has product entries", map[string]any{"id": id})
	}
	if err := s.locations.Delete(ctx, id); err != nil {
		return notFound(err, "store location", id)
	}
	s.events.changed(ctx, events.EventStoreLocationChanged, id, actorID, events.ActionDeleted)
	return nil
}

func (s *StoreLocationService) prepare(ctx context.Context, in StoreLocationInput) (*domain.StoreLocation, error) {
	address, err := requiredName("address", in.Address, 500)
	if err != nil {
		return nil, err
	}
	if in.StoreBrandID <= 0 {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{"store_brand_id": "is required"})
	}
	if _, err := s.brands.GetByID(ctx, in.StoreBrandID); err != nil {
		return nil, notFound(err, "store brand", in.StoreBrandID)
	}
	return &domain.StoreLocation{StoreBrandID: in.StoreBrandID, Address: address}, nil
}
