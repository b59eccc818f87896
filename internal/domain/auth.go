package domain

import "time"

// TokenType distinguishes access from refresh JWTs.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
