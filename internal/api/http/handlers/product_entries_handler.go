package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/service"
)

type ProductEntriesHandler struct {
	entries *service.ProductEntryService
}

func NewProductEntriesHandler(entries *service.ProductEntryService) *ProductEntriesHandler {
	return &ProductEntriesHandler{entries: entries}
}

func (h *ProductEntriesHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductEntryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	entry, err := h.entries.Create(c.UserContext(), actor, service.ProductEntryInput{
		ProductID:       req.ProductID,
		StoreLocationID: req.StoreLocationID,
		Price:           req.Price,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.ProductEntryResponse]{Data: dto.NewProductEntryResponse(*entry)})
}

func (h *ProductEntriesHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.entries.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.ProductEntryResponse]{Data: dto.NewProductEntryResponse(*entry)})
}

func (h *ProductEntriesHandler) List(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.entries.List(c.UserContext(), q.PageRequest())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewProductEntryResponse))
}

type scopedList func(ctx context.Context, id int64, page domain.PageRequest) (domain.Page[domain.ProductEntryDetail], error)

func (h *ProductEntriesHandler) scoped(list scopedList) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var q dto.PageQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		page, err := list(c.UserContext(), id, q.PageRequest())
		if err != nil {
			return err
		}
		return c.JSON(dto.NewListResponse(page, dto.NewProductEntryResponse))
	}
}

// ListByProduct handles GET /product-entries/product/:id.
func (h *ProductEntriesHandler) ListByProduct(c *fiber.Ctx) error {
	return h.scoped(h.entries.ListByProduct)(c)
}

// ListByStoreBrand handles GET /product-entries/store-brand/:id.
func (h *ProductEntriesHandler) ListByStoreBrand(c *fiber.Ctx) error {
	return h.scoped(h.entries.ListByStoreBrand)(c)
}

// ListByStoreLocation handles GET /product-entries/store-location/:id.
func (h *ProductEntriesHandler) ListByStoreLocation(c *fiber.Ctx) error {
	return h.scoped(h.entries.ListByStoreLocation)(c)
}
