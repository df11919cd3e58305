package model

import (
	"time"

	"lodge/shared/money"
)

// Summary holds the headline counters for a single calendar day.
type Summary struct {
	TodayCheckIns   int          `db:"today_check_ins"`
	TotalRooms      int          `db:"total_rooms"`
	OccupiedRooms   int          `db:"occupied_rooms"`
	MonthlyRevenue  money.Amount `db:"monthly_revenue"`
	PendingBookings int          `db:"pending_bookings"`
}

// OccupancyPercent rounds occupied/total to the nearest whole percent.
func (s Summary) OccupancyPercent() int {
	if s.TotalRooms <= 0 {
		return 0
	}

	return (s.OccupiedRooms*100 + s.TotalRooms/2) / s.TotalRooms
}

type MonthlyRevenue struct {
	Month   string       `db:"month"`
	Revenue money.Amount `db:"revenue"`
}

type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

type RoomTypeCount struct {
	RoomType string `db:"room_type"`
	Count    int    `db:"count"`
}

// Guest aggregates the non-cancelled bookings made under one email address.
type Guest struct {
	Email      string       `db:"email"`
	Name       string       `db:"name"`
	Phone      string       `db:"phone"`
	LastStay   time.Time    `db:"last_stay"`
	TotalStays int          `db:"total_stays"`
	TotalSpent money.Amount `db:"total_spent"`
}
