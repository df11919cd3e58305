package model

import (
	"slices"
	"time"

	"lodge/internal/domains/booking/availability"
	"lodge/shared/model"
	"lodge/shared/money"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID               = "id"
	FieldBookingReference = "booking_reference"
	FieldRoomID           = "room_id"
	FieldGuestName        = "guest_name"
	FieldGuestEmail       = "guest_email"
	FieldGuestPhone       = "guest_phone"
	FieldGuestCountry     = "guest_country"
	FieldGuestAddress     = "guest_address"
	FieldCheckIn          = "check_in"
	FieldCheckOut         = "check_out"
	FieldAdults           = "adults"
	FieldChildren         = "children"
	FieldTotalNights      = "total_nights"
	FieldRoomPrice        = "room_price"
	FieldSubtotal         = "subtotal"
	FieldTaxAmount        = "tax_amount"
	FieldTotalPrice       = "total_price"
	FieldPaymentMethod    = "payment_method"
	FieldStatus           = "status"
	FieldSpecialRequests  = "special_requests"
	FieldCreatedAt        = "created_at"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCompleted  = "completed"
	StatusCancelled  = availability.StatusCancelled
)

const (
	PaymentCreditCard   = "credit_card"
	PaymentPaypal       = "paypal"
	PaymentBankTransfer = "bank_transfer"
	PaymentCash         = "cash"
	PaymentPayAtHotel   = "pay_at_hotel"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCompleted, StatusCancelled},
	StatusCheckedIn: {StatusCheckedOut, StatusCompleted, StatusCancelled},
}

var statuses = []string{
	StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCompleted, StatusCancelled,
}

type Booking struct {
	ID               string       `db:"id"`
	BookingReference string       `db:"booking_reference"`
	RoomID           string       `db:"room_id"`
	GuestName        string       `db:"guest_name"`
	GuestEmail       string       `db:"guest_email"`
	GuestPhone       string       `db:"guest_phone"`
	GuestCountry     string       `db:"guest_country"`
	GuestAddress     string       `db:"guest_address"`
	CheckIn          time.Time    `db:"check_in"`
	CheckOut         time.Time    `db:"check_out"`
	Adults           int          `db:"adults"`
	Children         int          `db:"children"`
	TotalNights      int          `db:"total_nights"`
	RoomPrice        money.Amount `db:"room_price"`
	Subtotal         money.Amount `db:"subtotal"`
	TaxAmount        money.Amount `db:"tax_amount"`
	TotalPrice       money.Amount `db:"total_price"`
	PaymentMethod    string       `db:"payment_method"`
	Status           string       `db:"status"`
	SpecialRequests  string       `db:"special_requests"`
	model.Metadata
}

// Stay projects the booking onto the room calendar.
func (b Booking) Stay() availability.Stay {
	return availability.Stay{
		RoomID: b.RoomID,
		Status: b.Status,
		Span: availability.Span{
			CheckIn:  availability.Date(b.CheckIn),
			CheckOut: availability.Date(b.CheckOut),
		},
	}
}

// Statuses lists every booking status in lifecycle order.
func Statuses() []string {
	return slices.Clone(statuses)
}

func IsStatus(status string) bool {
	return slices.Contains(statuses, status)
}

func IsTerminal(status string) bool {
	_, open := transitions[status]

	return IsStatus(status) && !open
}

// CanTransition reports whether a booking in from may move to to. Staying put is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return IsStatus(to)
	}

	return slices.Contains(transitions[from], to)
}
