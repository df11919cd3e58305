// Package timezone pins wall-clock time to APP_TIMEZONE (an IANA name, UTC when unset).
package timezone

import (
	"time"

	"lodge/config"

	"github.com/rs/zerolog/log"
)

var appLocation *time.Location

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, falling back to UTC")

		appLocation = time.UTC

		return
	}

	appLocation = loc

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")
}

func location() *time.Location {
	if appLocation == nil {
		return time.UTC
	}

	return appLocation
}

func Now() time.Time {
	return time.Now().In(location())
}

// ToAppTime converts t to the application timezone.
func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

func GetLocation() *time.Location {
	return location()
}

// Parse interprets value as wall-clock time in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, location())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Today returns midnight of the current calendar date in the application timezone.
func Today() time.Time {
	return DateOf(Now())
}

// DateOf truncates t to midnight of its calendar date in the application timezone.
func DateOf(t time.Time) time.Time {
	local := ToAppTime(t)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// ParseDate parses a YYYY-MM-DD calendar date in the application timezone.
func ParseDate(value string) (time.Time, error) {
	return Parse(time.DateOnly, value)
}
