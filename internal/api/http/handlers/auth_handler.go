package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/auth"
	"github.com/cijene-me/cijene-api/internal/service"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.UserResponse]{Data: dto.NewUserResponse(*user)})
}

// Login handles POST /auth/token and POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Identity() == "" {
		return apperrors.NewValidationError("invalid input", map[string]any{"email": "is required"})
	}
	pair, err := h.auth.Login(c.UserContext(), req.Identity(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.TokenResponse]{Data: dto.NewTokenResponse(pair)})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.TokenResponse]{Data: dto.NewTokenResponse(pair)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[fiber.Map]{Data: fiber.Map{"message": "logged out"}})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	user, err := h.auth.CurrentUser(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.UserResponse]{Data: dto.NewUserResponse(*user)})
}
