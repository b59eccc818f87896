package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/media"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// ProductInput is the writable part of a product. A nil ImageURL on update keeps
// the current image.
type ProductInput struct {
	Name       string
	Barcode    string
	CategoryID int64
	ImageURL   *string
}

// ProductService manages the catalog and product images.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	media      media.Store
	maxUpload  int64
	events     publisher
	logger     *zap.Logger
}

// ProductDependencies groups what the product service needs. Media may be nil.
type ProductDependencies struct {
	ProductRepo    repository.ProductRepository
	CategoryRepo   repository.CategoryRepository
	Media          media.Store
	MaxUploadBytes int64
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

func NewProductService(deps ProductDependencies) *ProductService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products:   deps.ProductRepo,
		categories: deps.CategoryRepo,
		media:      deps.Media,
		maxUpload:  deps.MaxUploadBytes,
		events:     newPublisher(deps.Dispatcher, logger),
		logger:     logger,
	}
}

func (s *ProductService) Create(ctx context.Context, actorID int64, in ProductInput) (*domain.Product, error) {
	p, err := s.prepare(ctx, in, 0)
	if err != nil {
		return nil, err
	}
	p.ImageURL = trimmedOrNil(in.ImageURL)
	if err := s.products.Create(ctx, p); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, duplicateProduct(nil, p.Barcode)
		}
		return nil, err
	}
	s.events.changed(ctx, events.EventProductChanged, p.ID, actorID, events.ActionCreated)
	return s.Get(ctx, p.ID)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) (domain.Page[domain.Product], error) {
	f.PageRequest = f.PageRequest.Normalize()
	switch f.OrderBy {
	case "", domain.ProductOrderName, domain.ProductOrderCreatedAt:
	default:
		return domain.Page[domain.Product]{}, apperrors.NewValidationError("invalid input",
			map[string]any{"order_by": "must be one of name, created_at"})
	}
	return s.products.List(ctx, f)
}

func (s *ProductService) Update(ctx context.Context, actorID, id int64, in ProductInput) (*domain.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.prepare(ctx, in, id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.ImageURL = current.ImageURL
	if in.ImageURL != nil {
		p.ImageURL = trimmedOrNil(in.ImageURL)
	}
	if err := s.products.Update(ctx, p); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, duplicateProduct(nil, p.Barcode)
		}
		return nil, notFound(err, "product", id)
	}
	s.events.changed(ctx, events.EventProductChanged, id, actorID, events.ActionUpdated)
	return s.Get(ctx, id)
}

// Delete removes a product without price entries, and its image.
func (s *ProductService) Delete(ctx context.Context, actorID, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	inUse, err := s.products.HasEntries(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflict("product has price entries", map[string]any{"id": id})
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return notFound(err, "product", id)
	}
	s.dropImage(ctx, p.ImageKey)
	s.events.changed(ctx, events.EventProductChanged, id, actorID, events.ActionDeleted)
	return nil
}

// UploadImage stores a new product image and replaces the old one.
func (s *ProductService) UploadImage(ctx context.Context, actorID, id int64, contentType string, r io.Reader, size int64) (*domain.Product, error) {
	if s.media == nil {
		return nil, apperrors.NewServiceUnavailable("MEDIA_UNAVAILABLE", "image uploads are not configured")
	}
	if err := media.ValidateImage(contentType, size, s.maxUpload); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.media.Upload(ctx, media.ProductImageKey(id), contentType, r, size)
	if err != nil {
		if errors.Is(err, media.ErrUnavailable) {
			return nil, apperrors.NewServiceUnavailable("MEDIA_UNAVAILABLE", "image uploads are not configured")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.products.UpdateImage(ctx, id, &obj.URL, &obj.Key); err != nil {
		s.dropImage(ctx, &obj.Key)
		return nil, notFound(err, "product", id)
	}
	s.dropImage(ctx, current.ImageKey)

	s.logger.Info("product image uploaded", zap.Int64("product_id", id), zap.String("key", obj.Key))
	s.events.changed(ctx, events.EventProductChanged, id, actorID, events.ActionUpdated)
	return s.Get(ctx, id)
}

func (s *ProductService) dropImage(ctx context.Context, key *string) {
	if s.media == nil || key == nil || *key == "" {
		return
	}
	if err := s.media.Delete(ctx, *key); err != nil {
		s.logger.Warn("delete product image failed", zap.String("key", *key), zap.Error(err))
	}
}

func (s *ProductService) prepare(ctx context.Context, in ProductInput, selfID int64) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	barcode := strings.TrimSpace(in.Barcode)

	details := map[string]any{}
	if name == "" {
		details["name"] = "is required"
	} else if len([]rune(name)) > maxNameLength {
		details["name"] = "is too long"
	}
	if barcode == "" {
		details["barcode"] = "is required"
	} else if len(barcode) > 64 {
		details["barcode"] = "is too long"
	}
	if in.CategoryID <= 0 {
		details["category_id"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid input", details)
	}

	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		return nil, notFound(err, "category", in.CategoryID)
	}

	dup, err := s.products.FindDuplicate(ctx, name, barcode, selfID)
	switch {
	case err == nil:
		return nil, duplicateProduct(dup, barcode)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	return &domain.Product{Name: name, Barcode: barcode, CategoryID: in.CategoryID}, nil
}

func duplicateProduct(dup *domain.Product, barcode string) error {
	details := map[string]any{"name": "product already exists"}
	if dup != nil && dup.Barcode == barcode {
		details = map[string]any{"barcode": "product with this barcode already exists"}
	}
	return apperrors.NewValidationError("invalid input", details)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
