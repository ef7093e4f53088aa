package services

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// publishHourUTC is midnight US Central Standard Time. It deliberately ignores
// daylight saving so already scheduled content keeps its instant.
const publishHourUTC = 6

// DateKey returns the canonical YYYY-MM-DD content key for t, in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// ParseDateKey checks that s is a real calendar date in canonical form.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil || t.Format(dateKeyLayout) != s {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}

// PublishInstant is the moment scheduled content for dateKey goes live. With a
// nil location it is 06:00 UTC on that date; otherwise local midnight in loc.
func PublishInstant(dateKey string, loc *time.Location) (time.Time, error) {
	day, err := ParseDateKey(dateKey)
	if err != nil {
		return time.Time{}, err
	}

	if loc == nil {
		return time.Date(day.Year(), day.Month(), day.Day(), publishHourUTC, 0, 0, 0, time.UTC), nil
	}

	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).UTC(), nil
}
