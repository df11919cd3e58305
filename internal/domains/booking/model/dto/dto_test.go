package dto_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/pricing"
	"lodge/shared/failure"
	"lodge/shared/money"
	"lodge/shared/validator"

	"github.com/stretchr/testify/assert"
)

func TestParseSpan(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		nights   int
		kind     failure.Kind
	}{
		{name: "three nights", checkIn: "2024-01-10", checkOut: "2024-01-13", nights: 3},
		{name: "across new year", checkIn: "2024-12-30", checkOut: "2025-01-02", nights: 3},
		{name: "inverted", checkIn: "2024-01-13", checkOut: "2024-01-10", kind: failure.KindInvalidDateRange},
		{name: "bad format", checkIn: "10/01/2024", checkOut: "2024-01-13", kind: failure.KindInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := dto.ParseSpan(tt.checkIn, tt.checkOut)

			if tt.kind != "" {
				assert.Equal(t, tt.kind, failure.GetKind(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.nights, span.Nights())
			assert.Equal(t, time.UTC, span.CheckIn.Location())
		})
	}
}

func TestCreateBookingRequest_Guests(t *testing.T) {
	req := dto.CreateBookingRequest{}

	adults, children := req.Guests()
	assert.Equal(t, 2, adults)
	assert.Equal(t, 0, children)

	one, three := 1, 3
	req.Adults, req.Children = &one, &three

	adults, children = req.Guests()
	assert.Equal(t, 1, adults)
	assert.Equal(t, 3, children)
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	req := dto.CreateBookingRequest{
		Name:          "  Ada Lovelace ",
		Email:         "ADA@example.com",
		Phone:         "123",
		PaymentMethod: model.PaymentCash,
	}

	span, _ := dto.ParseSpan("2024-01-10", "2024-01-13")
	quote, _ := pricing.Calculate(money.FromCents(10000), span.Nights(), 1000)

	booking := req.ToModel("room-1", span, quote, "KL-2024-1234", "guest")

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "KL-2024-1234", booking.BookingReference)
	assert.Equal(t, "Ada Lovelace", booking.GuestName)
	assert.Equal(t, "ada@example.com", booking.GuestEmail)
	assert.Equal(t, model.StatusPending, booking.Status)
	assert.Equal(t, 3, booking.TotalNights)
	assert.Equal(t, money.FromCents(33000), booking.TotalPrice)
	assert.Equal(t, "guest", booking.CreatedBy)
}

func TestCreateBookingRequest_HintMismatches(t *testing.T) {
	quote := pricing.Quote{Nights: 3, RoomPrice: 10000, Subtotal: 30000, Tax: 3000, Total: 33000}

	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{name: "no hints", body: `{}`, expected: []string{}},
		{name: "matching hints", body: `{"total_nights":3,"room_price":"100.00","total_price":330}`, expected: []string{}},
		{name: "float total from a browser", body: `{"total_price":330.00000000000006}`, expected: []string{}},
		{name: "wrong total", body: `{"total_nights":3,"total_price":"300.00"}`, expected: []string{model.FieldTotalPrice}},
		{name: "unreadable hints", body: `{"total_nights":"three","room_price":true}`, expected: []string{model.FieldTotalNights, model.FieldRoomPrice}},
		{name: "fractional nights", body: `{"total_nights":2.5}`, expected: []string{model.FieldTotalNights}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.CreateBookingRequest

			err := json.Unmarshal([]byte(tt.body), &req)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, req.HintMismatches(quote))
		})
	}
}

func TestCreateBookingRequest_DecodeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "snake case",
			body: `{"room_id":"r-1","check_in":"2030-01-10","check_out":"2030-01-13","payment_method":"cash","special_requests":"late"}`,
		},
		{
			name: "camel case",
			body: `{"roomId":"r-1","checkIn":"2030-01-10","checkOut":"2030-01-13","paymentMethod":"cash","specialRequests":"late"}`,
		},
		{
			name: "snake case wins",
			body: `{"roomId":"other","room_id":"r-1","checkIn":"2030-01-10","checkOut":"2030-01-13","paymentMethod":"cash","specialRequests":"late"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.CreateBookingRequest

			err := json.Unmarshal([]byte(tt.body), &req)

			assert.NoError(t, err)
			assert.Equal(t, "r-1", req.RoomID)
			assert.Equal(t, "2030-01-10", req.CheckIn)
			assert.Equal(t, "2030-01-13", req.CheckOut)
			assert.Equal(t, model.PaymentCash, req.PaymentMethod)
			assert.Equal(t, "late", req.SpecialRequests)
		})
	}
}

func TestCreateBookingRequest_ValidateKeepsFloatTotal(t *testing.T) {
	body := `{"roomId":"6f1c2a7e-3b4d-4c8e-9a51-2d7f0b9e4c10","checkIn":"2030-01-10","checkOut":"2030-01-13",` +
		`"name":"Ada","email":"ada@example.com","phone":"123","paymentMethod":"cash","total_price":330.00000000000006}`

	var req dto.CreateBookingRequest

	err := validator.Validate(strings.NewReader(body), &req)

	assert.NoError(t, err)

	if assert.NotNil(t, req.TotalPrice) {
		assert.True(t, req.TotalPrice.Equal(money.FromCents(33000)))
	}
}

func TestBookingResponse_FromModel(t *testing.T) {
	booking := model.Booking{
		ID:         "booking-1",
		CheckIn:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC),
		RoomPrice:  10000,
		Subtotal:   30000,
		TaxAmount:  3000,
		TotalPrice: 33000,
	}

	var res dto.BookingResponse
	res.FromModel(booking)

	assert.Equal(t, "2024-01-10", res.CheckIn)
	assert.Equal(t, "2024-01-13", res.CheckOut)
	assert.Equal(t, "330.00", res.TotalPrice.String())
	assert.Equal(t, int64(33000), res.TotalPriceCents)
	assert.Equal(t, int64(3000), res.TaxAmountCents)
}

func TestListFilter_FromRequest(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/bookings?status=confirmed&email=Ada@Example.com&room_id=room-1&start_date=2024-01-01&end_date=2024-01-31", nil)

		var filter dto.ListFilter

		assert.NoError(t, filter.FromRequest(r))
		assert.Equal(t, model.StatusConfirmed, filter.Status)
		assert.Equal(t, "ada@example.com", filter.Email)

		group := filter.FilterGroup()
		where, args := group.GetWhereClause()

		assert.Contains(t, where, "bookings.check_in >= :start_date")
		assert.Contains(t, where, "bookings.check_out <= :end_date")
		assert.Equal(t, "2024-01-01", args["start_date"])
		assert.Equal(t, "2024-01-31", args["end_date"])
		assert.Equal(t, "room-1", args["room_id"])
	})

	t.Run("no filters", func(t *testing.T) {
		var filter dto.ListFilter

		assert.NoError(t, filter.FromRequest(httptest.NewRequest("GET", "/v1/bookings", nil)))

		group := filter.FilterGroup()
		where, _ := group.GetWhereClause()
		assert.Empty(t, where)
	})

	t.Run("unknown status", func(t *testing.T) {
		var filter dto.ListFilter

		err := filter.FromRequest(httptest.NewRequest("GET", "/v1/bookings?status=archived", nil))
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})

	t.Run("bad date", func(t *testing.T) {
		var filter dto.ListFilter

		err := filter.FromRequest(httptest.NewRequest("GET", "/v1/bookings?start_date=yesterday", nil))
		assert.EqualError(t, err, "start_date must use the format 2006-01-02")
	})
}

func TestAvailabilityQuery_FromRequest(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		guests   int
		roomType string
		message  string
	}{
		{name: "defaults", url: "/v1/rooms/available?check_in=2024-01-15&check_out=2024-01-18", guests: 1},
		{name: "party and type", url: "/v1/rooms/available?check_in=2024-01-15&check_out=2024-01-18&adults=2&children=1&type=suite", guests: 3, roomType: "suite"},
		{name: "camel case dates", url: "/v1/rooms/available?checkIn=2024-01-15&checkOut=2024-01-18&adults=2", guests: 2},
		{name: "missing dates", url: "/v1/rooms/available", message: "missing required fields: check_in, check_out"},
		{name: "inverted dates", url: "/v1/rooms/available?check_in=2024-01-18&check_out=2024-01-15", message: "check_out must be after check_in"},
		{name: "no adults", url: "/v1/rooms/available?check_in=2024-01-15&check_out=2024-01-18&adults=0", message: "adults must be at least 1 and children must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query dto.AvailabilityQuery

			err := query.FromRequest(httptest.NewRequest("GET", tt.url, nil))

			if tt.message != "" {
				assert.EqualError(t, err, tt.message)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.guests, query.Guests())
			assert.Equal(t, tt.roomType, query.RoomType)
			assert.Equal(t, 3, query.Span.Nights())
		})
	}
}
