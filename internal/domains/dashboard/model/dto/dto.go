package dto

import (
	"time"

	bookingModel "lodge/internal/domains/booking/model"
	"lodge/internal/domains/dashboard/model"
	"lodge/shared"
	"lodge/shared/constant"
	"lodge/shared/money"
)

const (
	// RevenueMonths is the length of the revenue trend, current month included.
	RevenueMonths = 6

	MonthFormat = "2006-01"
)

type RevenuePoint struct {
	Month        string       `json:"month"`
	Revenue      money.Amount `json:"revenue"`
	RevenueCents int64        `json:"revenue_cents"`
}

type RoomTypeCount struct {
	RoomType string `json:"room_type"`
	Count    int    `json:"count"`
}

type DashboardResponse struct {
	Date                string          `json:"date"`
	TodayCheckIns       int             `json:"today_check_ins"`
	TotalRooms          int             `json:"total_rooms"`
	OccupiedRooms       int             `json:"occupied_rooms"`
	OccupancyRate       int             `json:"occupancy_rate"`
	MonthlyRevenue      money.Amount    `json:"monthly_revenue"`
	MonthlyRevenueCents int64           `json:"monthly_revenue_cents"`
	PendingBookings     int             `json:"pending_bookings"`
	StatusCounts        map[string]int  `json:"status_counts"`
	Revenue             []RevenuePoint  `json:"revenue"`
	RoomTypes           []RoomTypeCount `json:"room_types"`
}

// Build assembles the dashboard for day. Months and statuses missing from the aggregates are reported as zero.
func (d *DashboardResponse) Build(day time.Time, summary model.Summary, revenue []model.MonthlyRevenue, statuses []model.StatusCount, roomTypes []model.RoomTypeCount) {
	d.Date = day.Format(constant.DateOnlyFormat)
	d.TodayCheckIns = summary.TodayCheckIns
	d.TotalRooms = summary.TotalRooms
	d.OccupiedRooms = summary.OccupiedRooms
	d.OccupancyRate = summary.OccupancyPercent()
	d.MonthlyRevenue = summary.MonthlyRevenue
	d.MonthlyRevenueCents = summary.MonthlyRevenue.Cents()
	d.PendingBookings = summary.PendingBookings

	d.StatusCounts = make(map[string]int)
	for _, status := range bookingModel.Statuses() {
		d.StatusCounts[status] = 0
	}

	for _, count := range statuses {
		d.StatusCounts[count.Status] = count.Count
	}

	byMonth := make(map[string]money.Amount, len(revenue))
	for _, point := range revenue {
		byMonth[point.Month] = point.Revenue
	}

	d.Revenue = make([]RevenuePoint, 0, RevenueMonths)
	for _, month := range Months(day, RevenueMonths) {
		label := month.Format(MonthFormat)
		amount := byMonth[label]

		d.Revenue = append(d.Revenue, RevenuePoint{Month: label, Revenue: amount, RevenueCents: amount.Cents()})
	}

	d.RoomTypes = make([]RoomTypeCount, len(roomTypes))
	for i, count := range roomTypes {
		d.RoomTypes[i] = RoomTypeCount{RoomType: count.RoomType, Count: count.Count}
	}
}

// Months returns the first day of the n months ending with day's month, oldest first.
func Months(day time.Time, n int) []time.Time {
	first := MonthStart(day)
	months := make([]time.Time, n)

	for i := range n {
		months[i] = first.AddDate(0, i-n+1, 0)
	}

	return months
}

func MonthStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
}

type GuestResponse struct {
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	LastStay        string       `json:"last_stay"`
	TotalStays      int          `json:"total_stays"`
	TotalSpent      money.Amount `json:"total_spent"`
	TotalSpentCents int64        `json:"total_spent_cents"`
}

func (g *GuestResponse) FromModel(guest model.Guest) {
	g.Email = guest.Email
	g.Name = guest.Name
	g.Phone = guest.Phone
	g.LastStay = guest.LastStay.Format(constant.DateOnlyFormat)
	g.TotalStays = guest.TotalStays
	g.TotalSpent = guest.TotalSpent
	g.TotalSpentCents = guest.TotalSpent.Cents()
}

type GetGuestsResponse struct {
	Guests    []GuestResponse `json:"guests"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (g *GetGuestsResponse) FromModels(models []model.Guest, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)
	g.Guests = make([]GuestResponse, len(models))

	for i, mod := range models {
		g.Guests[i].FromModel(mod)
	}
}
