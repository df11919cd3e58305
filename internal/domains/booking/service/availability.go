package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"lodge/infras/otel"
	"lodge/internal/domains/booking/availability"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/repository"
	roomModel "lodge/internal/domains/room/model"
	roomDto "lodge/internal/domains/room/model/dto"
	roomRepository "lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Availability answers calendar questions without locking. Results may race with concurrent bookings.
type Availability interface {
	IsAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	FindAvailableRooms(ctx context.Context, query dto.AvailabilityQuery) ([]roomDto.RoomResponse, error)
}

type availabilityImpl struct {
	bookings repository.Booking
	rooms    roomRepository.Room
	otel     otel.Otel
}

func NewAvailability(bookings repository.Booking, rooms roomRepository.Room, otel otel.Otel) Availability {
	return &availabilityImpl{
		bookings: bookings,
		rooms:    rooms,
		otel:     otel,
	}
}

func (s *availabilityImpl) IsAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (available bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability.IsAvailable")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	span, err := availability.NewSpan(checkIn, checkOut)
	if err != nil {
		return false, failure.InvalidDateRange(err.Error()) // nolint:wrapcheck
	}

	if uuid.Validate(roomID) != nil {
		return false, failure.NotFound("room not found") // nolint:wrapcheck
	}

	room, err := s.rooms.Get(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName), roomModel.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return false, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return false, failure.NotFound("room not found") // nolint:wrapcheck
	}

	bookings, err := s.bookings.GetBlocking(ctx, []string{roomID}, span)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings for room")

		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	return availability.Free(roomID, span, stays(bookings)), nil
}

func (s *availabilityImpl) FindAvailableRooms(ctx context.Context, query dto.AvailabilityQuery) (res []roomDto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability.FindAvailableRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filters := []any{
		gDto.Filter{Field: roomModel.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: roomModel.TableName},
		gDto.Filter{Field: roomModel.FieldCapacity, Value: query.Guests(), Operator: gDto.FilterOperatorGreaterEq, Table: roomModel.TableName},
	}

	if query.RoomType != constant.Empty {
		filters = append(filters, gDto.Filter{Field: roomModel.FieldRoomType, Value: query.RoomType, Operator: gDto.FilterOperatorEq, Table: roomModel.TableName})
	}

	params := gDto.QueryParams{
		SortBy:  fmt.Sprintf("%s.%s", roomModel.TableName, roomModel.FieldPricePerNight),
		SortDir: gDto.SortDirAsc,
	}

	candidates, err := s.rooms.GetAll(ctx, params, gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd})
	if err != nil {
		log.Error().Err(err).Msg("failed to get candidate rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	ids := make([]string, 0, len(candidates))
	for _, room := range candidates {
		ids = append(ids, room.ID)
	}

	bookings, err := s.bookings.GetBlocking(ctx, ids, query.Span)
	if err != nil {
		log.Error().Err(err).Msg("failed to get blocking bookings")

		return res, fmt.Errorf("failed to check availability: %w", err)
	}

	blocking := stays(bookings)
	free := []roomModel.Room{}

	for _, room := range candidates {
		if room.Fits(query.Guests()) && availability.Free(room.ID, query.Span, blocking) {
			free = append(free, room)
		}
	}

	slices.SortStableFunc(free, roomModel.ByPrice)

	return roomDto.FromModels(free), nil
}

func stays(bookings []model.Booking) []availability.Stay {
	result := make([]availability.Stay, len(bookings))
	for i, booking := range bookings {
		result[i] = booking.Stay()
	}

	return result
}
