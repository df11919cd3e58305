package model

import (
	"cmp"
	"strings"

	"lodge/shared/model"
	"lodge/shared/money"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldRoomNumber    = "room_number"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldRoomType      = "room_type"
	FieldPricePerNight = "price_per_night"
	FieldCapacity      = "capacity"
	FieldSize          = "size"
	FieldImages        = "images"
	FieldAmenities     = "amenities"
	FieldIsAvailable   = "is_available"
	FieldIsFeatured    = "is_featured"
)

const (
	TypeStandard     = "standard"
	TypeDeluxe       = "deluxe"
	TypeSuite        = "suite"
	TypeFamily       = "family"
	TypePresidential = "presidential"
)

type Room struct {
	ID            string         `db:"id"`
	RoomNumber    string         `db:"room_number"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	RoomType      string         `db:"room_type"`
	PricePerNight money.Amount   `db:"price_per_night"`
	Capacity      int            `db:"capacity"`
	Size          string         `db:"size"`
	Images        pq.StringArray `db:"images"`
	Amenities     pq.StringArray `db:"amenities"`
	IsAvailable   bool           `db:"is_available"`
	IsFeatured    bool           `db:"is_featured"`
	model.Metadata
}

// Fits reports whether the room is bookable by a party of the given size.
func (r Room) Fits(guests int) bool {
	return r.IsAvailable && r.Capacity >= guests
}

// ByPrice orders rooms cheapest first, then by id.
func ByPrice(a, b Room) int {
	if c := cmp.Compare(a.PricePerNight, b.PricePerNight); c != 0 {
		return c
	}

	return strings.Compare(a.ID, b.ID)
}
