// Package event publishes booking lifecycle events to the configured broker.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=./mocks/event_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/infras/rabbitmq"
	"lodge/shared/constant"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingCancelled     = "booking.cancelled"
)

type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// New wraps data in an envelope stamped with a fresh id and the current time.
func New(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: timezone.Now(),
		Data:       raw,
	}, nil
}

type Handler func(ctx context.Context, event Event) error

type Publisher interface {
	Publish(ctx context.Context, topic, key string, evt Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// NewBroker picks the transport named by EVENTS_BROKER. Unknown names fall back to a no-op broker.
func NewBroker(cfg *config.Config, otel otel.Otel, kafkaClient kafka.Client, rabbitClient rabbitmq.Client) Broker {
	switch cfg.Events.Broker {
	case BrokerKafka:
		log.Info().Str("broker", BrokerKafka).Msg("event broker selected")

		return &kafkaBroker{client: kafkaClient, otel: otel}
	case BrokerRabbitMQ:
		log.Info().Str("broker", BrokerRabbitMQ).Msg("event broker selected")

		return &rabbitBroker{client: rabbitClient, otel: otel, queue: cfg.Events.ConsumerName}
	default:
		log.Info().Str("broker", BrokerNone).Msg("event publishing disabled")

		return noopBroker{}
	}
}

func decode(body []byte) (Event, error) {
	var evt Event

	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode event: %w", err)
	}

	return evt, nil
}

type kafkaBroker struct {
	client kafka.Client
	otel   otel.Otel
}

func (b *kafkaBroker) Publish(ctx context.Context, topic, key string, evt Event) (err error) {
	ctx, scope := b.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Kafka.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return b.client.SendMessages(ctx, topic, kafka.Message{Key: key, Value: body}) //nolint:wrapcheck
}

func (b *kafkaBroker) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.client.Consume(ctx, topic, func(ctx context.Context, message kafka.Message) error { //nolint:wrapcheck
		evt, err := decode(message.Value)
		if err != nil {
			return err
		}

		return handler(ctx, evt)
	})
}

func (b *kafkaBroker) Close() error {
	return b.client.Close() //nolint:wrapcheck
}

// rabbitBroker maps a topic to a topic exchange and routes by event type.
type rabbitBroker struct {
	client rabbitmq.Client
	otel   otel.Otel
	queue  string
}

func (b *rabbitBroker) Publish(ctx context.Context, topic, _ string, evt Event) (err error) {
	ctx, scope := b.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".RabbitMQ.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return b.client.Publish(ctx, topic, evt.Type, body) //nolint:wrapcheck
}

func (b *rabbitBroker) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.client.Consume(ctx, topic, b.queue, func(ctx context.Context, _ string, body []byte) error { //nolint:wrapcheck
		evt, err := decode(body)
		if err != nil {
			return err
		}

		return handler(ctx, evt)
	})
}

func (b *rabbitBroker) Close() error {
	return b.client.Close() //nolint:wrapcheck
}

type noopBroker struct{}

func (noopBroker) Publish(_ context.Context, topic, key string, evt Event) error {
	log.Debug().Str("topic", topic).Str("key", key).Str("type", evt.Type).Msg("event dropped, no broker configured")

	return nil
}

// Subscribe blocks until ctx is done.
func (noopBroker) Subscribe(ctx context.Context, _ string, _ Handler) error {
	<-ctx.Done()

	return nil
}

func (noopBroker) Close() error {
	return nil
}
