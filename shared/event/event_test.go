package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/kafka"
	kafkaMocks "lodge/infras/kafka/mocks"
	"lodge/infras/otel/mocks"
	"lodge/infras/rabbitmq"
	rabbitMocks "lodge/infras/rabbitmq/mocks"
	"lodge/shared/event"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type payload struct {
	Reference string `json:"reference"`
}

func newConfig(broker string) *config.Config {
	cfg := &config.Config{}
	cfg.Events.Broker = broker
	cfg.Events.ConsumerName = "lodge.test"

	return cfg
}

func TestNew(t *testing.T) {
	evt, err := event.New(event.TypeBookingCreated, payload{Reference: "KL-2024-1234"})
	assert.NoError(t, err)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, event.TypeBookingCreated, evt.Type)
	assert.False(t, evt.OccurredAt.IsZero())
	assert.JSONEq(t, `{"reference":"KL-2024-1234"}`, string(evt.Data))
}

func TestNewRejectsUnencodable(t *testing.T) {
	_, err := event.New(event.TypeBookingCreated, make(chan int))

	assert.Error(t, err)
}

func TestKafkaBroker(t *testing.T) {
	ctrl := gomock.NewController(t)
	kafkaClient := kafkaMocks.NewMockClient(ctrl)
	rabbitClient := rabbitMocks.NewMockClient(ctrl)

	broker := event.NewBroker(newConfig(event.BrokerKafka), mocks.NewOtel(), kafkaClient, rabbitClient)

	evt, err := event.New(event.TypeBookingCreated, payload{Reference: "KL-2024-1234"})
	assert.NoError(t, err)

	t.Run("publish keys the message", func(t *testing.T) {
		kafkaClient.EXPECT().
			SendMessages(gomock.Any(), "booking.events", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
				if !assert.Len(t, messages, 1) {
					return nil
				}

				assert.Equal(t, "booking-1", messages[0].Key)

				var decoded event.Event
				assert.NoError(t, json.Unmarshal(messages[0].Value, &decoded))
				assert.Equal(t, evt.ID, decoded.ID)
				assert.Equal(t, event.TypeBookingCreated, decoded.Type)

				return nil
			})

		assert.NoError(t, broker.Publish(context.Background(), "booking.events", "booking-1", evt))
	})

	t.Run("publish error is returned", func(t *testing.T) {
		kafkaClient.EXPECT().SendMessages(gomock.Any(), "booking.events", gomock.Any()).Return(errors.New("broker down"))

		assert.Error(t, broker.Publish(context.Background(), "booking.events", "booking-1", evt))
	})

	t.Run("subscribe decodes", func(t *testing.T) {
		body, err := json.Marshal(evt)
		assert.NoError(t, err)

		kafkaClient.EXPECT().
			Consume(gomock.Any(), "booking.events", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, handler kafka.Handler) error {
				return handler(ctx, kafka.Message{Key: "booking-1", Value: body})
			})

		var received event.Event

		err = broker.Subscribe(context.Background(), "booking.events", func(_ context.Context, e event.Event) error {
			received = e

			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, evt.ID, received.ID)
	})

	t.Run("close", func(t *testing.T) {
		kafkaClient.EXPECT().Close().Return(nil)

		assert.NoError(t, broker.Close())
	})
}

func TestRabbitBroker(t *testing.T) {
	ctrl := gomock.NewController(t)
	kafkaClient := kafkaMocks.NewMockClient(ctrl)
	rabbitClient := rabbitMocks.NewMockClient(ctrl)

	broker := event.NewBroker(newConfig(event.BrokerRabbitMQ), mocks.NewOtel(), kafkaClient, rabbitClient)

	evt, err := event.New(event.TypeBookingCancelled, payload{Reference: "KL-2024-1234"})
	assert.NoError(t, err)

	t.Run("routes by event type", func(t *testing.T) {
		rabbitClient.EXPECT().Publish(gomock.Any(), "booking.events", event.TypeBookingCancelled, gomock.Any()).Return(nil)

		assert.NoError(t, broker.Publish(context.Background(), "booking.events", "booking-1", evt))
	})

	t.Run("subscribe uses the consumer queue", func(t *testing.T) {
		rabbitClient.EXPECT().
			Consume(gomock.Any(), "booking.events", "lodge.test", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _, _ string, handler rabbitmq.Handler) error {
				return handler(ctx, event.TypeBookingCancelled, []byte("not json"))
			})

		err := broker.Subscribe(context.Background(), "booking.events", func(context.Context, event.Event) error {
			t.Fatal("handler must not run for undecodable messages")

			return nil
		})

		assert.Error(t, err)
	})
}

func TestNoopBroker(t *testing.T) {
	broker := event.NewBroker(newConfig(event.BrokerNone), mocks.NewOtel(), nil, nil)

	evt, err := event.New(event.TypeBookingCreated, payload{})
	assert.NoError(t, err)

	assert.NoError(t, broker.Publish(context.Background(), "booking.events", "booking-1", evt))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.NoError(t, broker.Subscribe(ctx, "booking.events", nil))
	assert.NoError(t, broker.Close())
}
