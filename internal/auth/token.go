package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cijene-me/cijene-api/internal/domain"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenManager issues and validates access and refresh JWTs. The two token kinds use
// separate secrets and carry a token_type claim, so neither can stand in for the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) { tm.now = now }
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	tm := &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	Role      domain.Role      `json:"role,omitempty"`
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

func (tm *TokenManager) AccessTTL() time.Duration  { return tm.accessTTL }
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// IssueAccess signs an access token for the user.
func (tm *TokenManager) IssueAccess(userID int64, role domain.Role) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.accessTTL)
	claims := &Claims{
		Role:      role,
		TokenType: domain.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueRefresh signs a refresh token with a fresh jti. The caller registers the jti
// as a session.
func (tm *TokenManager) IssueRefresh(userID int64) (token, jti string, expiresAt time.Time, err error) {
	now := tm.now()
	expiresAt = now.Add(tm.refreshTTL)
	jti = uuid.NewString()
	claims := &Claims{
		TokenType: domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.refreshSecret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return token, jti, expiresAt, nil
}

// ParseAccess validates an access token.
func (tm *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, tm.accessSecret, domain.TokenTypeAccess)
}

// ParseRefresh validates a refresh token. It does not consult the session store.
func (tm *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	claims, err := tm.parse(tokenStr, tm.refreshSecret, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (tm *TokenManager) parse(tokenStr string, secret []byte, want domain.TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.TokenType != want {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
