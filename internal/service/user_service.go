package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/repository"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// UserService exposes account administration.
type UserService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	events   publisher
	logger   *zap.Logger
}

func NewUserService(users repository.UserRepository, sessions repository.SessionRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:    users,
		sessions: sessions,
		events:   newPublisher(dispatcher, logger),
		logger:   logger,
	}
}

func (s *UserService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.User], error) {
	return s.users.List(ctx, page.Normalize())
}

// ChangeRole sets a user's role and signs them out everywhere, so the next refresh
// cannot mint tokens carrying the old role.
func (s *UserService) ChangeRole(ctx context.Context, actorID, userID int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{"role": "must be one of ADMIN, MODERATOR, USER"})
	}
	if actorID == userID {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{"role": "cannot change your own role"})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	if user.Role == role {
		return user, nil
	}

	oldRole := user.Role
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, notFound(err, "user", userID)
	}
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.Role = role

	s.logger.Info("user role changed",
		zap.Int64("user_id", userID),
		zap.Int64("actor_id", actorID),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(role)),
	)
	s.events.publish(ctx, events.EventUserRoleChanged, userID, actorID, events.UserRoleChangedPayload{
		OldRole: string(oldRole),
		NewRole: string(role),
	})
	return user, nil
}
