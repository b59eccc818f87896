package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/cijene-me/cijene-api/internal/domain"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Role is read from the user record,
// so a role change takes effect on the next request.
type Principal struct {
	UserID int64
	Role   domain.Role
	User   *domain.User
}

// UserLookup loads the account behind a token subject.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	claims, err := m.tokens.ParseAccess(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewUnauthorized("token expired")
		}
		return apperrors.NewUnauthorized("invalid token")
	}
	userID, _ := claims.UserID()

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{UserID: user.ID, Role: user.Role, User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
