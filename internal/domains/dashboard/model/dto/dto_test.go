package dto_test

import (
	"testing"
	"time"

	"lodge/internal/domains/dashboard/model"
	"lodge/internal/domains/dashboard/model/dto"
	"lodge/shared/money"

	"github.com/stretchr/testify/assert"
)

func TestMonths(t *testing.T) {
	day := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	months := dto.Months(day, 6)

	labels := make([]string, len(months))
	for i, month := range months {
		labels[i] = month.Format(dto.MonthFormat)
	}

	assert.Equal(t, []string{"2025-09", "2025-10", "2025-11", "2025-12", "2026-01", "2026-02"}, labels)
	assert.Equal(t, 1, months[0].Day())
}

func TestDashboardResponse_Build(t *testing.T) {
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	var res dto.DashboardResponse
	res.Build(day,
		model.Summary{TodayCheckIns: 1, TotalRooms: 4, OccupiedRooms: 1, MonthlyRevenue: money.FromCents(5000)},
		[]model.MonthlyRevenue{{Month: "2025-11", Revenue: money.FromCents(700)}, {Month: "2026-01", Revenue: money.FromCents(5000)}},
		[]model.StatusCount{{Status: "confirmed", Count: 2}},
		nil,
	)

	assert.Equal(t, "2026-01-15", res.Date)
	assert.Equal(t, 25, res.OccupancyRate)
	assert.Equal(t, int64(5000), res.MonthlyRevenueCents)
	assert.Equal(t, 2, res.StatusCounts["confirmed"])
	assert.Equal(t, 0, res.StatusCounts["cancelled"])
	assert.Empty(t, res.RoomTypes)

	cents := make([]int64, len(res.Revenue))
	for i, point := range res.Revenue {
		cents[i] = point.RevenueCents
	}

	assert.Equal(t, "2025-08", res.Revenue[0].Month)
	assert.Equal(t, []int64{0, 0, 0, 700, 0, 5000}, cents)
}
