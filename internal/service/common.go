package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/events"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// publisher wraps an optional dispatcher.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func newPublisher(d events.Dispatcher, logger *zap.Logger) publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: d, logger: logger}
}

func (p publisher) publish(ctx context.Context, t events.EventType, resourceID, actorID int64, payload any) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       t,
		ResourceID: resourceID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("publish event failed", zap.String("event_type", string(t)), zap.Error(err))
	}
}

func (p publisher) changed(ctx context.Context, t events.EventType, resourceID, actorID int64, action events.Action) {
	p.publish(ctx, t, resourceID, actorID, events.ChangedPayload{Action: action})
}

// notFound turns pgx.ErrNoRows into a NOT_FOUND error for resource/id.
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func requiredName(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError("invalid input", map[string]any{field: "is required"})
	}
	if len([]rune(value)) > max {
		return "", apperrors.NewValidationError("invalid input", map[string]any{field: "is too long"})
	}
	return value, nil
}
