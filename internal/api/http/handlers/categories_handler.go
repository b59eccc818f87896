package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/service"
)

type CategoriesHandler struct {
	categories *service.CategoryService
}

func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	cat, err := h.categories.Create(c.UserContext(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.CategoryResponse]{Data: dto.NewCategoryResponse(*cat)})
}

func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.categories.List(c.UserContext(), q.PageRequest())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewCategoryResponse))
}

func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.categories.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.CategoryResponse]{Data: dto.NewCategoryResponse(*cat)})
}

func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	cat, err := h.categories.Update(c.UserContext(), actor, id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.CategoryResponse]{Data: dto.NewCategoryResponse(*cat)})
}

func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.categories.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
