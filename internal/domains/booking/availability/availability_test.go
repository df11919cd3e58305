package availability_test

import (
	"testing"
	"time"

	"lodge/internal/domains/booking/availability"

	"github.com/stretchr/testify/assert"
)

func date(value string) time.Time {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func span(t *testing.T, in, out string) availability.Span {
	t.Helper()

	s, err := availability.NewSpan(date(in), date(out))
	assert.NoError(t, err)

	return s
}

func TestNewSpan(t *testing.T) {
	tests := []struct {
		name    string
		in      time.Time
		out     time.Time
		nights  int
		wantErr bool
	}{
		{name: "three nights", in: date("2024-01-10"), out: date("2024-01-13"), nights: 3},
		{name: "one night", in: date("2024-01-10"), out: date("2024-01-11"), nights: 1},
		{name: "month boundary", in: date("2024-01-30"), out: date("2024-02-02"), nights: 3},
		{name: "leap day", in: date("2024-02-28"), out: date("2024-03-01"), nights: 2},
		{name: "time of day ignored", in: date("2024-01-10").Add(15 * time.Hour), out: date("2024-01-12").Add(9 * time.Hour), nights: 2},
		{name: "same day rejected", in: date("2024-01-10"), out: date("2024-01-10"), wantErr: true},
		{name: "inverted rejected", in: date("2024-01-12"), out: date("2024-01-10"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := availability.NewSpan(tt.in, tt.out)

			if tt.wantErr {
				assert.ErrorIs(t, err, availability.ErrInvalidDateRange)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.nights, s.Nights())
		})
	}
}

func TestNewSpanAcrossTimezones(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	local, err := availability.NewSpan(
		time.Date(2024, 1, 15, 0, 0, 0, 0, jakarta),
		time.Date(2024, 1, 18, 0, 0, 0, 0, jakarta),
	)
	assert.NoError(t, err)

	stored := span(t, "2024-01-10", "2024-01-15")

	assert.False(t, local.Overlaps(stored))
	assert.Equal(t, stored.CheckOut, local.CheckIn)
}

func TestOverlaps(t *testing.T) {
	existing := span(t, "2024-01-10", "2024-01-15")

	tests := []struct {
		name     string
		other    availability.Span
		expected bool
	}{
		{name: "back to back after", other: span(t, "2024-01-15", "2024-01-18"), expected: false},
		{name: "back to back before", other: span(t, "2024-01-05", "2024-01-10"), expected: false},
		{name: "straddles check out", other: span(t, "2024-01-14", "2024-01-16"), expected: true},
		{name: "straddles check in", other: span(t, "2024-01-08", "2024-01-11"), expected: true},
		{name: "contained", other: span(t, "2024-01-11", "2024-01-12"), expected: true},
		{name: "contains", other: span(t, "2024-01-01", "2024-01-31"), expected: true},
		{name: "identical", other: span(t, "2024-01-10", "2024-01-15"), expected: true},
		{name: "disjoint", other: span(t, "2024-02-01", "2024-02-03"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, existing.Overlaps(tt.other))
			assert.Equal(t, tt.expected, tt.other.Overlaps(existing))
		})
	}
}

func TestBlocks(t *testing.T) {
	for _, status := range []string{"pending", "confirmed", "checked_in", "checked_out", "completed"} {
		assert.True(t, availability.Blocks(status), status)
	}

	assert.False(t, availability.Blocks(availability.StatusCancelled))
}

func TestConflicts(t *testing.T) {
	stays := []availability.Stay{
		{RoomID: "room-1", Status: "confirmed", Span: span(t, "2024-01-10", "2024-01-15")},
		{RoomID: "room-1", Status: "cancelled", Span: span(t, "2024-01-15", "2024-01-20")},
		{RoomID: "room-2", Status: "pending", Span: span(t, "2024-01-14", "2024-01-16")},
	}

	assert.Len(t, availability.Conflicts("room-1", span(t, "2024-01-14", "2024-01-16"), stays), 1)
	assert.True(t, availability.Free("room-1", span(t, "2024-01-15", "2024-01-18"), stays))
	assert.False(t, availability.Free("room-2", span(t, "2024-01-15", "2024-01-18"), stays))
	assert.True(t, availability.Free("room-3", span(t, "2024-01-14", "2024-01-16"), stays))
}
