package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"lodge/infras/otel"
	"lodge/infras/postgres"
	bookingModel "lodge/internal/domains/booking/model"
	"lodge/internal/domains/dashboard/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/logger"

	"github.com/jmoiron/sqlx"
)

const (
	querySummary = `SELECT
	(SELECT COUNT(*) FROM bookings WHERE check_in = :day AND status <> :cancelled) AS today_check_ins,
	(SELECT COUNT(*) FROM rooms) AS total_rooms,
	(SELECT COUNT(DISTINCT room_id) FROM bookings
		WHERE check_in <= :day AND check_out > :day AND status IN (:confirmed, :checked_in)) AS occupied_rooms,
	(SELECT COALESCE(SUM(total_price), 0) FROM bookings
		WHERE created_at >= :month_start AND created_at < :month_end AND status <> :cancelled) AS monthly_revenue,
	(SELECT COUNT(*) FROM bookings WHERE status = :pending) AS pending_bookings`

	queryRevenue = `SELECT to_char(created_at AT TIME ZONE :timezone, 'YYYY-MM') AS month, COALESCE(SUM(total_price), 0) AS revenue
	FROM bookings
	WHERE created_at >= :from AND status <> :cancelled
	GROUP BY month
	ORDER BY month`

	queryStatusCounts = `SELECT status, COUNT(*) AS count FROM bookings GROUP BY status ORDER BY status`

	queryRoomTypeCounts = `SELECT room_type, COUNT(*) AS count FROM rooms GROUP BY room_type ORDER BY room_type`

	queryGuests = `SELECT guest_email AS email, MAX(guest_name) AS name, MAX(guest_phone) AS phone,
		MAX(check_out) AS last_stay, COUNT(*) AS total_stays, COALESCE(SUM(total_price), 0) AS total_spent
	FROM bookings
	WHERE status <> :cancelled
	GROUP BY guest_email
	ORDER BY last_stay DESC, guest_email ASC
	LIMIT :limit OFFSET :offset`

	queryCountGuests = `SELECT COUNT(DISTINCT guest_email) FROM bookings WHERE status <> :cancelled`
)

// Dashboard runs the read-only aggregates behind the staff dashboard.
type Dashboard interface {
	Summary(ctx context.Context, day time.Time) (model.Summary, error)
	Revenue(ctx context.Context, from time.Time) ([]model.MonthlyRevenue, error)
	StatusCounts(ctx context.Context) ([]model.StatusCount, error)
	RoomTypeCounts(ctx context.Context) ([]model.RoomTypeCount, error)
	Guests(ctx context.Context, params gDto.QueryParams) ([]model.Guest, error)
	CountGuests(ctx context.Context) (int, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Dashboard {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) Summary(ctx context.Context, day time.Time) (res model.Summary, err error) {
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())

	args := map[string]any{
		"day":         day.Format(constant.DateOnlyFormat),
		"month_start": monthStart,
		"month_end":   monthStart.AddDate(0, 1, 0),
		"cancelled":   bookingModel.StatusCancelled,
		"confirmed":   bookingModel.StatusConfirmed,
		"checked_in":  bookingModel.StatusCheckedIn,
		"pending":     bookingModel.StatusPending,
	}

	err = r.get(ctx, "Summary", querySummary, args, &res)

	return res, err
}

func (r *repositoryImpl) Revenue(ctx context.Context, from time.Time) (res []model.MonthlyRevenue, err error) {
	args := map[string]any{
		"from":      from,
		"timezone":  from.Location().String(),
		"cancelled": bookingModel.StatusCancelled,
	}

	res = []model.MonthlyRevenue{}
	err = r.selectAll(ctx, "Revenue", queryRevenue, args, &res)

	return res, err
}

func (r *repositoryImpl) StatusCounts(ctx context.Context) (res []model.StatusCount, err error) {
	res = []model.StatusCount{}
	err = r.selectAll(ctx, "StatusCounts", queryStatusCounts, map[string]any{}, &res)

	return res, err
}

func (r *repositoryImpl) RoomTypeCounts(ctx context.Context) (res []model.RoomTypeCount, err error) {
	res = []model.RoomTypeCount{}
	err = r.selectAll(ctx, "RoomTypeCounts", queryRoomTypeCounts, map[string]any{}, &res)

	return res, err
}

func (r *repositoryImpl) Guests(ctx context.Context, params gDto.QueryParams) (res []model.Guest, err error) {
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = constant.DefaultValuePage
	}

	if limit < 1 {
		limit = constant.DefaultValueLimit
	}

	args := map[string]any{
		"cancelled": bookingModel.StatusCancelled,
		"limit":     limit,
		"offset":    (page - 1) * limit,
	}

	res = []model.Guest{}
	err = r.selectAll(ctx, "Guests", queryGuests, args, &res)

	return res, err
}

func (r *repositoryImpl) CountGuests(ctx context.Context) (res int, err error) {
	err = r.get(ctx, "CountGuests", queryCountGuests, map[string]any{"cancelled": bookingModel.StatusCancelled}, &res)

	return res, err
}

func (r *repositoryImpl) get(ctx context.Context, name, query string, args map[string]any, dest any) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".dashboard."+name)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		scope.TraceError(err)

		return err
	}
	defer stmt.Close()

	if err = stmt.GetContext(ctx, dest, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to query dashboard %s: %w", name, err)
	}

	return nil
}

func (r *repositoryImpl) selectAll(ctx context.Context, name, query string, args map[string]any, dest any) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".dashboard."+name)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		scope.TraceError(err)

		return err
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, dest, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to query dashboard %s: %w", name, err)
	}

	return nil
}

func (r *repositoryImpl) prepare(ctx context.Context, query string) (*sqlx.NamedStmt, error) {
	stmt, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to prepare dashboard query: %w", err)
	}

	return stmt, nil
}
