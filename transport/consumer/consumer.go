// Package consumer runs the background subscribers that react to booking events.
package consumer

import (
	"context"
	"errors"
	"time"

	"lodge/config"
	dashboardService "lodge/internal/domains/dashboard/service"
	"lodge/shared/event"

	"github.com/rs/zerolog/log"
)

const retryDelay = 5 * time.Second

type Consumer struct {
	cfg       *config.Config
	broker    event.Broker
	dashboard dashboardService.Dashboard
}

func New(cfg *config.Config, broker event.Broker, dashboard dashboardService.Dashboard) *Consumer {
	return &Consumer{
		cfg:       cfg,
		broker:    broker,
		dashboard: dashboard,
	}
}

// Run subscribes the dashboard to the booking topic until ctx is cancelled, resubscribing after failures.
func (c *Consumer) Run(ctx context.Context) {
	topic := c.cfg.Events.BookingTopic

	log.Info().Str("topic", topic).Str("consumer", c.cfg.Events.ConsumerName).Msg("starting booking event consumer")

	for {
		err := c.broker.Subscribe(ctx, topic, c.dashboard.HandleBookingEvent)
		if ctx.Err() != nil {
			log.Info().Str("topic", topic).Msg("booking event consumer stopped")

			return
		}

		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("topic", topic).Msg("booking event subscription failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

// Close releases the broker connections shared with the publishers.
func (c *Consumer) Close() error {
	return c.broker.Close() //nolint:wrapcheck
}
