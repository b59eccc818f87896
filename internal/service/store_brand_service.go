package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

const maxNameLength = 255

// StoreBrandService manages retail chains.
type StoreBrandService struct {
	brands repository.StoreBrandRepository
	events publisher
}

func NewStoreBrandService(brands repository.StoreBrandRepository, dispatcher events.Dispatcher, logger *zap.Logger) *StoreBrandService {
	return &StoreBrandService{brands: brands, events: newPublisher(dispatcher, logger)}
}

func (s *StoreBrandService) Create(ctx context.Context, actorID int64, name string) (*domain.StoreBrand, error) {
	name, err := requiredName("name", name, maxNameLength)
	if err != nil {
		return nil, err
	}
	brand := &domain.StoreBrand{Name: name}
	if err := s.brands.Create(ctx, brand); err != nil {
		return nil, err
	}
	s.events.changed(ctx, events.EventStoreBrandChanged, brand.ID, actorID, events.ActionCreated)
	return brand, nil
}

func (s *StoreBrandService) Get(ctx context.Context, id int64) (*domain.StoreBrand, error) {
	brand, err := s.brands.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "store brand", id)
	}
	return brand, nil
}

func (s *StoreBrandService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.StoreBrand], error) {
	return s.brands.List(ctx, page.Normalize())
}

func (s *StoreBrandService) Update(ctx context.Context, actorID, id int64, name string) (*domain.StoreBrand, error) {
	name, err := requiredName("name", name, maxNameLength)
	if err != nil {
		return nil, err
	}
	brand := &domain.StoreBrand{ID: id, Name: name}
	if err := s.brands.Update(ctx, brand); err != nil {
		return nil, notFound(err, "store brand", id)
	}
	s.events.changed(ctx, events.EventStoreBrandChanged, id, actorID, events.ActionUpdated)
	return brand, nil
}

// Delete removes a brand that has no locations.
func (s *StoreBrandService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inUse, err := s.brands.HasLocations(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflict("store brand has locations", map[string]any{"id": id})
	}
	if err := s.brands.Delete(ctx, id); err != nil {
		return notFound(err, "store brand", id)
	}
	s.events.changed(ctx, events.EventStoreBrandChanged, id, actorID, events.ActionDeleted)
	return nil
}
