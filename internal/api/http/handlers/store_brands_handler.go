package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/service"
)

type StoreBrandsHandler struct {
	brands *service.StoreBrandService
}

func NewStoreBrandsHandler(brands *service.StoreBrandService) *StoreBrandsHandler {
	return &StoreBrandsHandler{brands: brands}
}

func (h *StoreBrandsHandler) Create(c *fiber.Ctx) error {
	var req dto.StoreBrandRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	brand, err := h.brands.Create(c.UserContext(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.StoreBrandResponse]{Data: dto.NewStoreBrandResponse(*brand)})
}

func (h *StoreBrandsHandler) List(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.brands.List(c.UserContext(), q.PageRequest())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewStoreBrandResponse))
}

func (h *StoreBrandsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	brand, err := h.brands.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.StoreBrandResponse]{Data: dto.NewStoreBrandResponse(*brand)})
}

func (h *StoreBrandsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.StoreBrandRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	brand, err := h.brands.Update(c.UserContext(), actor, id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.StoreBrandResponse]{Data: dto.NewStoreBrandResponse(*brand)})
}

func (h *StoreBrandsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.brands.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
