package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/domain"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// RequireRoles admits principals holding one of the allowed roles. It must run after
// AuthMiddleware.Handle.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin admits ADMIN only.
func RequireAdmin() fiber.Handler {
	return RequireRoles(domain.RoleAdmin)
}

// RequirePrivileged admits ADMIN and MODERATOR.
func RequirePrivileged() fiber.Handler {
	return RequireRoles(domain.PrivilegedRoles...)
}
