package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/booking/availability"
	"lodge/internal/domains/booking/model"
	roomModel "lodge/internal/domains/room/model"
	roomRepository "lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	gRepo "lodge/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	savepointInsert = "booking_insert"

	argStayStart      = "stay_start"
	argStayEnd        = "stay_end"
	argReleasedStatus = "released_status"
	argRoomIDs        = "room_ids"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrDuplicateReference = errors.New("duplicate booking reference")
	ErrOverlappingBooking = errors.New("overlapping booking")
)

// RoomLockFunc runs while the room row is locked. Returning an error rolls the transaction back.
type RoomLockFunc func(tx *sqlx.Tx, room roomModel.Room) error

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	GetBlocking(ctx context.Context, roomIDs []string, span availability.Span) ([]model.Booking, error)
	GetBlockingTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, span availability.Span) ([]model.Booking, error)
	CreateTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error
	WithRoomLock(ctx context.Context, roomID string, fn RoomLockFunc) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db    *postgres.Connection
	otel  otel.Otel
	rooms roomRepository.Room
}

func New(db *postgres.Connection, otel otel.Otel, rooms roomRepository.Room) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
		rooms:      rooms,
	}
}

// BlockingFilter matches non-cancelled bookings of the given rooms whose stay overlaps span.
func BlockingFilter(roomIDs []string, span availability.Span) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, ArgName: argRoomIDs, Value: roomIDs, Operator: gDto.FilterOperatorIn, Table: model.TableName},
			gDto.Filter{Field: model.FieldCheckIn, ArgName: argStayEnd, Value: span.CheckOut.Format(constant.DateOnlyFormat), Operator: gDto.FilterOperatorLess, Table: model.TableName},
			gDto.Filter{Field: model.FieldCheckOut, ArgName: argStayStart, Value: span.CheckIn.Format(constant.DateOnlyFormat), Operator: gDto.FilterOperatorGreater, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, ArgName: argReleasedStatus, Value: model.StatusCancelled, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}

func (r *repositoryImpl) GetBlocking(ctx context.Context, roomIDs []string, span availability.Span) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetBlocking")
	defer scope.End()

	if len(roomIDs) == 0 {
		return []model.Booking{}, nil
	}

	return r.GetAll(ctx, gDto.QueryParams{}, BlockingFilter(roomIDs, span)) //nolint:wrapcheck
}

func (r *repositoryImpl) GetBlockingTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, span availability.Span) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetBlockingTx")
	defer scope.End()

	return r.GetAllTx(ctx, sqltx, gDto.QueryParams{}, BlockingFilter([]string{roomID}, span)) //nolint:wrapcheck
}

// CreateTx inserts inside a savepoint so a failed insert leaves the outer transaction usable.
func (r *repositoryImpl) CreateTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CreateTx")
	defer scope.End()

	if _, err := sqltx.ExecContext(ctx, "SAVEPOINT "+savepointInsert); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	err := r.InsertTx(ctx, sqltx, booking)
	if err == nil {
		if _, err = sqltx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointInsert); err != nil {
			scope.TraceError(err)

			return fmt.Errorf("failed to release savepoint: %w", err)
		}

		return nil
	}

	if _, rbErr := sqltx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointInsert); rbErr != nil {
		scope.TraceError(rbErr)

		return fmt.Errorf("failed to roll back savepoint: %w", errors.Join(err, rbErr))
	}

	return classify(err)
}

// WithRoomLock runs fn in a write transaction holding SELECT ... FOR UPDATE on the room row.
// It commits when fn succeeds and rolls back otherwise.
func (r *repositoryImpl) WithRoomLock(ctx context.Context, roomID string, fn RoomLockFunc) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.WithRoomLock")
	defer scope.End()

	sqltx, err := r.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := sqltx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Str("roomID", roomID).Msg("failed to roll back booking transaction")
		}
	}()

	room, err := r.rooms.GetForUpdateTx(ctx, sqltx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to lock room: %w", err)
	}

	if room.ID == constant.Empty {
		return ErrRoomNotFound
	}

	if err = fn(sqltx, room); err != nil {
		return err
	}

	if err = sqltx.Commit(); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case constant.PqErrorCodeUniqueViolation:
		return fmt.Errorf("%w: %w", ErrDuplicateReference, err)
	case constant.PqErrorCodeExclusionViolation:
		return fmt.Errorf("%w: %w", ErrOverlappingBooking, err)
	default:
		return err
	}
}
