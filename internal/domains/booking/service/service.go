package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/booking/availability"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/pricing"
	"lodge/internal/domains/booking/reference"
	"lodge/internal/domains/booking/repository"
	roomModel "lodge/internal/domains/room/model"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/event"
	"lodge/shared/failure"
	"lodge/shared/timezone"
	"lodge/shared/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking          = "booking:get"
	cacheGetBookingReference = "booking:reference"
	cacheGetAllBooking       = "booking:gets"
	cacheCountBooking        = "booking:count"

	defaultReferenceAttempts = 5
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetByReference(ctx context.Context, ref string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.ListFilter) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, filter dto.ListFilter) (int, error)
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (dto.BookingResponse, error)
	Confirm(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	publisher event.Publisher
	reference reference.Generator
}

func New(
	repo repository.Booking,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	publisher event.Publisher,
	reference reference.Generator,
) Booking {
	return &serviceImpl{
		repo:      repo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		publisher: publisher,
		reference: reference,
	}
}

// Create books a room. The room row stays locked from the overlap check until the insert commits.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err // nolint:wrapcheck
	}

	span, err := req.Span()
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	if span.CheckIn.Before(availability.Date(timezone.Today())) {
		return res, failure.InvalidDateRange("check_in must not be in the past") // nolint:wrapcheck
	}

	adults, children := req.Guests()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		user = constant.ContextGuest
	}

	var booking model.Booking

	err = s.repo.WithRoomLock(ctx, req.RoomID, func(tx *sqlx.Tx, room roomModel.Room) error {
		if !room.IsAvailable {
			return failure.BadRequestFromString("room is not open for booking") // nolint:wrapcheck
		}

		if room.Capacity < adults+children {
			return failure.BadRequestFromString(fmt.Sprintf("room holds at most %d guests", room.Capacity)) // nolint:wrapcheck
		}

		existing, err := s.repo.GetBlockingTx(ctx, tx, room.ID, span)
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}

		if !availability.Free(room.ID, span, stays(existing)) {
			return failure.RoomConflict(room.ID) // nolint:wrapcheck
		}

		quote, err := pricing.Calculate(room.PricePerNight, span.Nights(), s.cfg.Booking.TaxRateBps)
		if err != nil {
			return fmt.Errorf("failed to price booking: %w", err)
		}

		if mismatches := req.HintMismatches(quote); len(mismatches) > 0 {
			log.Warn().Strs("fields", mismatches).Str("roomID", room.ID).Msg("client booking totals ignored")
		}

		booking, err = s.insert(ctx, tx, req, room.ID, span, quote, user)

		return err
	})
	if err != nil {
		return res, s.createError(err, req.RoomID)
	}

	res.FromModel(booking)

	c := context.WithoutCancel(ctx)

	go s.invalidate(c)
	go s.publish(c, event.TypeBookingCreated, booking)

	return res, nil
}

// insert draws references until one is unique or the attempts run out.
func (s *serviceImpl) insert(
	ctx context.Context,
	tx *sqlx.Tx,
	req dto.CreateBookingRequest,
	roomID string,
	span availability.Span,
	quote pricing.Quote,
	user string,
) (model.Booking, error) {
	attempts := s.cfg.Booking.ReferenceMaxAttempts
	if attempts <= 0 {
		attempts = defaultReferenceAttempts
	}

	year := timezone.Now().Year()

	for attempt := 1; attempt <= attempts; attempt++ {
		booking := req.ToModel(roomID, span, quote, s.reference.Generate(year), user)

		err := s.repo.CreateTx(ctx, tx, booking)
		if err == nil {
			return booking, nil
		}

		if !errors.Is(err, repository.ErrDuplicateReference) {
			return model.Booking{}, err
		}

		log.Warn().Int("attempt", attempt).Str("reference", booking.BookingReference).Msg("booking reference taken, drawing another")
	}

	return model.Booking{}, failure.ReferenceCollision(attempts) // nolint:wrapcheck
}

func (s *serviceImpl) createError(err error, roomID string) error {
	var fail *failure.Failure

	switch {
	case errors.As(err, &fail):
		return err
	case errors.Is(err, repository.ErrRoomNotFound):
		return failure.NotFound("room not found") // nolint:wrapcheck
	case errors.Is(err, repository.ErrOverlappingBooking):
		return failure.RoomConflict(roomID) // nolint:wrapcheck
	default:
		log.Error().Err(err).Str("roomID", roomID).Msg("failed to create booking")

		return fmt.Errorf("failed to create booking: %w", err)
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if uuid.Validate(id) != nil {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return s.cached(ctx, shared.BuildCacheKey(cacheGetBooking, id), shared.FilterByID(id, model.FieldID, model.TableName))
}

func (s *serviceImpl) GetByReference(ctx context.Context, ref string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.GetByReference")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !reference.Valid(ref) {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldBookingReference, Value: ref, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	return s.cached(ctx, shared.BuildCacheKey(cacheGetBookingReference, ref), filter)
}

func (s *serviceImpl) cached(ctx context.Context, cacheKey string, filter gDto.FilterGroup) (res dto.BookingResponse, err error) {
	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if _, err := s.cache.SaveIfAbsent(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, listFilter dto.ListFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.SortBy == constant.Empty {
		req.SortBy = fmt.Sprintf("%s.%s", model.TableName, model.FieldCreatedAt)
		req.SortDir = gDto.SortDirDesc
	}

	if req.SortDir == constant.Empty {
		req.SortDir = gDto.SortDirAsc
	}

	filter := listFilter.FilterGroup()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, listFilter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, listFilter dto.ListFilter) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := listFilter.FilterGroup()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, gDto.QueryParams{}, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

// UpdateStatus is last-write-wins. Re-applying the current status changes nothing.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, req.Status)
}

func (s *serviceImpl) Confirm(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusConfirmed)
}

// Cancel soft-cancels the booking and releases its dates. Cancelling twice is not an error.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusCancelled)
}

func (s *serviceImpl) transition(ctx context.Context, id, status string) (res dto.BookingResponse, err error) {
	if !model.IsStatus(status) {
		return res, failure.BadRequestFromString("status must be one of pending confirmed checked_in checked_out completed cancelled") // nolint:wrapcheck
	}

	if uuid.Validate(id) != nil {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.find(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, err
	}

	if booking.Status == status {
		res.FromModel(booking)

		return res, nil
	}

	if !model.CanTransition(booking.Status, status) {
		return res, failure.BadRequestFromString(fmt.Sprintf("cannot change booking status from %s to %s", booking.Status, status)) // nolint:wrapcheck
	}

	fields := shared.TransformFields(dto.UpdateStatusRequest{Status: status}, user)

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	booking.Status = status
	booking.ModifiedBy = user

	if modifiedAt, ok := fields[constant.FieldModifiedAt].(time.Time); ok {
		booking.ModifiedAt = modifiedAt
	}

	res.FromModel(booking)

	eventType := event.TypeBookingStatusChanged
	if status == model.StatusCancelled {
		eventType = event.TypeBookingCancelled
	}

	s.refresh(ctx, res)

	c := context.WithoutCancel(ctx)

	go s.invalidate(c)
	go s.publish(c, eventType, booking)

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, filter gDto.FilterGroup) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

// invalidate drops the cached lists and counts.
func (s *serviceImpl) invalidate(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
}

// refresh overwrites the cached booking under both keys before the caller sees the new status.
// When the write fails the keys are dropped instead.
func (s *serviceImpl) refresh(ctx context.Context, res dto.BookingResponse) {
	ctx = context.WithoutCancel(ctx)

	for _, key := range []string{
		shared.BuildCacheKey(cacheGetBooking, res.ID),
		shared.BuildCacheKey(cacheGetBookingReference, res.BookingReference),
	} {
		if err := s.cache.Save(ctx, key, res, s.cfg.Cache.TTL); err == nil {
			continue
		}

		if err := s.cache.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to drop stale booking cache")
		}
	}
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, booking model.Booking) {
	var payload dto.BookingResponse

	payload.FromModel(booking)

	evt, err := event.New(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to build booking event")

		return
	}

	if err := s.publisher.Publish(ctx, s.cfg.Events.BookingTopic, booking.ID, evt); err != nil {
		log.Error().Err(err).Str("type", eventType).Str("bookingID", booking.ID).Msg("failed to publish booking event")
	}
}
