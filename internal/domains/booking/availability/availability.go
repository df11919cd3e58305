// Package availability holds the calendar arithmetic shared by the availability
// queries and the booking creator.
//
// Stays are half-open date ranges [check_in, check_out): the guest leaves on the
// morning of check_out, so a stay ending on day D never conflicts with one starting on D.
package availability

import (
	"errors"
	"time"
)

var ErrInvalidDateRange = errors.New("check_out must be after check_in")

// Span is a half-open range of calendar dates.
type Span struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewSpan keeps only the calendar date of each end, pinned to UTC midnight so values parsed
// in the app timezone compare equal to DATE columns. Empty or inverted ranges are rejected.
func NewSpan(checkIn, checkOut time.Time) (Span, error) {
	span := Span{CheckIn: dateOf(checkIn), CheckOut: dateOf(checkOut)}

	if !span.CheckOut.After(span.CheckIn) {
		return Span{}, ErrInvalidDateRange
	}

	return span, nil
}

// Nights counts calendar days between check-in and check-out.
func (s Span) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / hoursPerDay)
}

// Overlaps is a_in < b_out && b_in < a_out.
func (s Span) Overlaps(other Span) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Stay is the subset of a booking the overlap rule needs.
type Stay struct {
	RoomID string
	Status string
	Span   Span
}

// Blocks reports whether a booking in this status holds its dates.
func Blocks(status string) bool {
	return status != StatusCancelled
}

// StatusCancelled is the only status that releases a room's dates.
const StatusCancelled = "cancelled"

// Conflicts returns the stays for roomID that block span.
func Conflicts(roomID string, span Span, stays []Stay) []Stay {
	conflicts := []Stay{}

	for _, stay := range stays {
		if stay.RoomID != roomID || !Blocks(stay.Status) {
			continue
		}

		if stay.Span.Overlaps(span) {
			conflicts = append(conflicts, stay)
		}
	}

	return conflicts
}

// Free reports whether no stay blocks span for roomID.
func Free(roomID string, span Span, stays []Stay) bool {
	return len(Conflicts(roomID, span, stays)) == 0
}

const hoursPerDay = 24

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date pins t's calendar date to UTC midnight.
func Date(t time.Time) time.Time {
	return dateOf(t)
}
