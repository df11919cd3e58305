package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/dashboard/model/dto"
	"lodge/internal/domains/dashboard/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/event"
	"lodge/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheDashboard = "dashboard"

	cachePartStats  = "stats"
	cachePartGuests = "guests"
	cachePartCount  = "guests_count"

	bookingEventPrefix = "booking."
)

type Dashboard interface {
	Stats(ctx context.Context) (dto.DashboardResponse, error)
	Guests(ctx context.Context, params gDto.QueryParams) (dto.GetGuestsResponse, error)
	Invalidate(ctx context.Context)
	HandleBookingEvent(ctx context.Context, evt event.Event) error
}

type serviceImpl struct {
	repo  repository.Dashboard
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Dashboard, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Dashboard {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Stats(ctx context.Context) (res dto.DashboardResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Dashboard.Stats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	today := timezone.Today()
	cacheKey := shared.BuildCacheKey(cacheDashboard, cachePartStats, today.Format(constant.DateOnlyFormat))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for dashboard")

		return res, nil
	}

	summary, err := s.repo.Summary(ctx, today)
	if err != nil {
		log.Error().Err(err).Msg("failed to get dashboard summary")

		return res, fmt.Errorf("failed to get dashboard summary: %w", err)
	}

	revenue, err := s.repo.Revenue(ctx, dto.Months(today, dto.RevenueMonths)[0])
	if err != nil {
		log.Error().Err(err).Msg("failed to get revenue trend")

		return res, fmt.Errorf("failed to get revenue trend: %w", err)
	}

	statuses, err := s.repo.StatusCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings by status")

		return res, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	roomTypes, err := s.repo.RoomTypeCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms by type")

		return res, fmt.Errorf("failed to count rooms by type: %w", err)
	}

	res.Build(today, summary, revenue, statuses, roomTypes)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save dashboard to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Guests(ctx context.Context, params gDto.QueryParams) (res dto.GetGuestsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Dashboard.Guests")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheDashboard, cachePartGuests, strconv.Itoa(params.Page), strconv.Itoa(params.Limit))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for guests")

		return res, nil
	}

	total, err := s.countGuests(ctx)
	if err != nil {
		return res, err
	}

	guests, err := s.repo.Guests(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to get guests")

		return res, fmt.Errorf("failed to get guests: %w", err)
	}

	res.FromModels(guests, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save guests to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) countGuests(ctx context.Context) (res int, err error) {
	cacheKey := shared.BuildCacheKey(cacheDashboard, cachePartCount)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for guest count")

		return res, nil
	}

	res, err = s.repo.CountGuests(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count guests")

		return res, fmt.Errorf("failed to count guests: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save guest count to cache")
		}
	}()

	return res, nil
}

// Invalidate drops every cached dashboard view.
func (s *serviceImpl) Invalidate(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheDashboard)
}

// HandleBookingEvent invalidates the dashboard whenever a booking changes. Other events are ignored.
func (s *serviceImpl) HandleBookingEvent(ctx context.Context, evt event.Event) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Dashboard.HandleBookingEvent")
	defer scope.End()

	if !strings.HasPrefix(evt.Type, bookingEventPrefix) {
		log.Debug().Str("type", evt.Type).Msg("ignoring event")

		return nil
	}

	log.Info().Str("type", evt.Type).Str("eventID", evt.ID).Msg("booking changed, invalidating dashboard")

	s.Invalidate(ctx)

	return nil
}
