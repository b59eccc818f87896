package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/auth"
	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/observability"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// AuthService coordinates registration, login and the refresh-session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	tokens     *auth.TokenManager
	bcryptCost int
	validate   *validator.Validate
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Tokens      *auth.TokenManager
	BcryptCost  int
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		validate:   validator.New(),
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

var errAlreadyRegistered = apperrors.NewValidationError("invalid input", map[string]any{"email": "already registered"})

// Register creates a USER account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	details := map[string]any{}
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		details["email"] = "must be a valid email address"
	}
	if fullName == "" {
		details["full_name"] = "is required"
	} else if len([]rune(fullName)) > 255 {
		details["full_name"] = "is too long"
	}
	if problems := auth.CheckPasswordPolicy(in.Password); len(problems) > 0 {
		details["password"] = strings.Join(problems, "; ")
	}
	if len(details) > 0 {
		s.metrics.RecordAuthEvent("register", "invalid")
		return nil, apperrors.NewValidationError("invalid input", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.metrics.RecordAuthEvent("register", "duplicate")
		return nil, errAlreadyRegistered
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			s.metrics.RecordAuthEvent("register", "duplicate")
			return nil, errAlreadyRegistered
		}
		return nil, err
	}

	s.metrics.RecordAuthEvent("register", "success")
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and opens a refresh session. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.RecordAuthEvent("login", "failure")
			return nil, apperrors.NewUnauthorized("incorrect email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.metrics.RecordAuthEvent("login", "failure")
		return nil, apperrors.NewUnauthorized("incorrect email or password")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAuthEvent("login", "success")
	return pair, nil
}

// Refresh exchanges a live refresh token for a new pair. The presented token is
// retired in the same step, so it can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{"refresh_token": "is required"})
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.metrics.RecordAuthEvent("refresh", "failure")
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("refresh token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	userID, _ := claims.UserID()

	newToken, newJTI, refreshExp, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	sessionUser, err := s.sessions.Rotate(ctx, claims.ID, newJTI, s.tokens.RefreshTTL())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			s.metrics.RecordAuthEvent("refresh", "failure")
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if sessionUser != userID {
		_ = s.sessions.Revoke(ctx, newJTI)
		s.metrics.RecordAuthEvent("refresh", "failure")
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		_ = s.sessions.Revoke(ctx, newJTI)
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.RecordAuthEvent("refresh", "failure")
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		_ = s.sessions.Revoke(ctx, newJTI)
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuthEvent("refresh", "success")
	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     newToken,
		ExpiresIn:        int64(s.tokens.AccessTTL().Seconds()),
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Logout revokes the session behind a refresh token. Tokens that are malformed,
// expired or already revoked are accepted silently.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.NewValidationError("invalid input", map[string]any{"refresh_token": "is required"})
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.metrics.RecordAuthEvent("logout", "noop")
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.metrics.RecordAuthEvent("logout", "success")
	return nil
}

// CurrentUser resolves the account behind an access token.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	userID, _ := claims.UserID()
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, jti, refreshExp, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.sessions.Create(ctx, jti, user.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int64(s.tokens.AccessTTL().Seconds()),
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
