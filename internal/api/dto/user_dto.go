package dto

import (
	"time"

	"github.com/cijene-me/cijene-api/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest accepts either a JSON body or an OAuth2 password form, where the
// email travels as username.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Identity returns the email, falling back to username.
func (r LoginRequest) Identity() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// RefreshRequest carries a refresh token for /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func NewTokenResponse(p *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        "bearer",
		ExpiresIn:        p.ExpiresIn,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, CreatedAt: u.CreatedAt}
}

// ChangeRoleRequest payload for PUT /users/{id}/role.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=ADMIN MODERATOR USER"`
}
