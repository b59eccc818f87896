package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

var errCategoryExists = apperrors.NewValidationError("invalid input", map[string]any{"name": "category already exists"})

// CategoryService manages product categories. Names are unique ignoring case.
type CategoryService struct {
	categories repository.CategoryRepository
	events     publisher
}

func NewCategoryService(categories repository.CategoryRepository, dispatcher events.Dispatcher, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, events: newPublisher(dispatcher, logger)}
}

func (s *CategoryService) Create(ctx context.Context, actorID int64, name string) (*domain.Category, error) {
	name, err := s.checkName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	cat := &domain.Category{Name: name}
	if err := s.categories.Create(ctx, cat); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, errCategoryExists
		}
		return nil, err
	}
	s.events.changed(ctx, events.EventCategoryChanged, cat.ID, actorID, events.ActionCreated)
	return cat, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return cat, nil
}

func (s *CategoryService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	return s.categories.List(ctx, page.Normalize())
}

func (s *CategoryService) Update(ctx context.Context, actorID, id int64, name string) (*domain.Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	name, err := s.checkName(ctx, name, id)
	if err != nil {
		return nil, err
	}
	cat := &domain.Category{ID: id, Name: name}
	if err := s.categories.Update(ctx, cat); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, errCategoryExists
		}
		return nil, notFound(err, "category", id)
	}
	s.events.changed(ctx, events.EventCategoryChanged, id, actorID, events.ActionUpdated)
	return cat, nil
}

// Delete removes a category that no product uses.
func (s *CategoryService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inUse, err := s.categories.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflict("category has products", map[string]any{"id": id})
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFound(err, "category", id)
	}
	s.events.changed(ctx, events.EventCategoryChanged, id, actorID, events.ActionDeleted)
	return nil
}

func (s *CategoryService) checkName(ctx context.Context, name string, selfID int64) (string, error) {
	name, err := requiredName("name", name, maxNameLength)
	if err != nil {
		return "", err
	}
	existing, err := s.categories.GetByName(ctx, name)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return "", errCategoryExists
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return "", err
	}
	return name, nil
}
