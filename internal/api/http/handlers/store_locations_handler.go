package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/service"
)

type StoreLocationsHandler struct {
	locations *service.StoreLocationService
}

func NewStoreLocationsHandler(locations *service.StoreLocationService) *StoreLocationsHandler {
	return &StoreLocationsHandler{locations: locations}
}

func (h *StoreLocationsHandler) Create(c *fiber.Ctx) error {
	var req dto.StoreLocationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	loc, err := h.locations.Create(c.UserContext(), actor, service.StoreLocationInput{
		StoreBrandID: req.StoreBrandID,
		Address:      req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.StoreLocationResponse]{Data: dto.NewStoreLocationResponse(*loc)})
}

// List handles GET /store-locations with an optional store_brand_id filter.
func (h *StoreLocationsHandler) List(c *fiber.Ctx) error {
	var q dto.LocationListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.locations.List(c.UserContext(), q.PageRequest(), q.StoreBrandID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewStoreLocationResponse))
}

// ListByBrand handles GET /store-locations/brand/:id.
func (h *StoreLocationsHandler) ListByBrand(c *fiber.Ctx) error {
	brandID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.locations.ListByBrand(c.UserContext(), brandID, q.PageRequest())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewStoreLocationResponse))
}

func (h *StoreLocationsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	loc, err := h.locations.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.StoreLocationResponse]{Data: dto.NewStoreLocationResponse(*loc)})
}

func (h *StoreLocationsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.StoreLocationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	loc, err := h.locations.Update(c.UserContext(), actor, id, service.StoreLocationInput{
		StoreBrandID: req.StoreBrandID,
		Address:      req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.StoreLocationResponse]{Data: dto.NewStoreLocationResponse(*loc)})
}

func (h *StoreLocationsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.locations.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
