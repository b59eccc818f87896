package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcher_PublishInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var calls []string
	d.Subscribe(EventProductChanged, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventProductChanged, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventCategoryChanged, func(context.Context, Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "1", Type: EventProductChanged})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second:product.changed"}, calls)
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPForwarder_Handle(t *testing.T) {
	ch := &fakeChannel{}
	fwd := &AMQPForwarder{channel: ch, exchange: "cijene.events", logger: zap.NewNop()}

	ev := Event{
		ID:         "ev-1",
		Type:       EventProductEntryCreated,
		ResourceID: 5,
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:    ProductEntryCreatedPayload{ProductID: 1, StoreLocationID: 2, Price: "1.99"},
	}
	require.NoError(t, fwd.Handle(context.Background(), ev))

	assert.Equal(t, "cijene.events", ch.exchange)
	assert.Equal(t, "product_entry.created", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "ev-1", decoded["id"])
	assert.Equal(t, "1.99", decoded["payload"].(map[string]any)["price"])

	fwd.Close()
	assert.True(t, ch.closed)
}

func TestAMQPForwarder_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	fwd := &AMQPForwarder{channel: ch, exchange: "x", logger: zap.NewNop()}

	err := fwd.Handle(context.Background(), Event{ID: "1", Type: EventCategoryChanged})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category.changed")
}
