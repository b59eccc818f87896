package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cijene-me/cijene-api/internal/events"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

func requireCode(t *testing.T, err error, code string, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, code, de.Code)
	require.Equal(t, status, de.HTTPStatus)
	return de
}

// recorder captures every event published on a dispatcher.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecorder() (events.Dispatcher, *recorder) {
	d := events.NewInMemoryDispatcher(nil)
	rec := &recorder{}
	for _, t := range events.AllTypes {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, e)
			return nil
		})
	}
	return d, rec
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}
