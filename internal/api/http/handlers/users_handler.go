package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/service"
)

// UsersHandler exposes account administration for admins.
type UsersHandler struct {
	users *service.UserService
}

func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.users.List(c.UserContext(), q.PageRequest())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewUserResponse))
}

// ChangeRole handles PUT /users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	user, err := h.users.ChangeRole(c.UserContext(), actor, id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.UserResponse]{Data: dto.NewUserResponse(*user)})
}
