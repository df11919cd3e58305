package rabbitmq

//go:generate go run go.uber.org/mock/mockgen -source=./rabbitmq.go -destination=./mocks/rabbitmq_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lodge/config"
	"lodge/shared/constant"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	exchangeKind    = "topic"
	prefetchCount   = 50
	reconnectWait   = 2 * time.Second
	bindingWildcard = "#"
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// Handler processes one delivery. An error rejects the delivery without requeueing it.
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Client publishes to and consumes from durable topic exchanges.
type Client interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
	Consume(ctx context.Context, exchange, queue string, handler Handler) error
	Close() error
}

type clientImpl struct {
	url string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// New does not dial; the connection is opened on first use and reopened after it drops.
func New(config *config.Config) Client {
	return &clientImpl{url: config.RabbitMQ.URL}
}

func (c *clientImpl) ensureChannel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	if c.conn == nil || c.conn.IsClosed() {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
		}

		c.conn = conn
	}

	channel, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	c.channel = channel

	return channel, nil
}

func declareExchange(channel *amqp.Channel, exchange string) error {
	err := channel.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return nil
}

func (c *clientImpl) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	channel, err := c.ensureChannel()
	if err != nil {
		log.Error().Err(err).Str("exchange", exchange).Msg("rabbitmq unavailable")

		return err
	}

	if err = declareExchange(channel, exchange); err != nil {
		return err
	}

	err = channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("exchange", exchange).Str("routingKey", routingKey).Msg("failed to publish message")

		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Consume binds a durable queue to every routing key of exchange and reconnects until ctx is done.
func (c *clientImpl) Consume(ctx context.Context, exchange, queue string, handler Handler) error {
	for {
		err := c.consume(ctx, exchange, queue, handler)
		if ctx.Err() != nil {
			return nil
		}

		log.Error().Err(err).Str("queue", queue).Msg("rabbitmq consumer stopped, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectWait):
		}
	}
}

func (c *clientImpl) consume(ctx context.Context, exchange, queue string, handler Handler) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer channel.Close()

	if err = channel.Qos(prefetchCount, 0, false); err != nil {
		log.Warn().Err(err).Msg("failed to set rabbitmq prefetch")
	}

	if err = declareExchange(channel, exchange); err != nil {
		return err
	}

	if _, err = channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err = channel.QueueBind(queue, bindingWildcard, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	deliveries, err := channel.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue, err)
	}

	for delivery := range deliveries {
		if err := handler(ctx, delivery.RoutingKey, delivery.Body); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("failed to handle delivery")

			if nackErr := delivery.Nack(false, false); nackErr != nil {
				log.Error().Err(nackErr).Msg("failed to reject delivery")
			}

			continue
		}

		if ackErr := delivery.Ack(false); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ack delivery")
		}
	}

	return errDeliveriesClosed
}

func (c *clientImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}

	return nil
}
