package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the forwarder needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPForwarder republishes dispatched events to a RabbitMQ topic exchange, using
// the event type as routing key.
type AMQPForwarder struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	logger   *zap.Logger
}

// NewAMQPForwarder dials RabbitMQ and declares the durable topic exchange.
func NewAMQPForwarder(url, exchange string, logger *zap.Logger) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPForwarder{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Handle publishes one event. It has the EventHandler signature.
func (f *AMQPForwarder) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = f.channel.PublishWithContext(ctx,
		f.exchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.Timestamp,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	f.logger.Debug("event forwarded", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	return nil
}

// Close closes the channel and connection.
func (f *AMQPForwarder) Close() {
	if f.channel != nil {
		_ = f.channel.Close()
	}
	if f.conn != nil {
		_ = f.conn.Close()
	}
}
