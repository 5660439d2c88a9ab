package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// Calendar buckets instants into farm calendar days. Every day boundary and
// cutoff comparison in the service goes through one Calendar so that all of
// them agree on the same location.
type Calendar struct {
	Location *time.Location
}

// UTC is the default calendar.
var UTC = Calendar{Location: time.UTC}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Day returns the calendar day containing t, represented as midnight UTC of
// that year-month-day.
func (c Calendar) Day(t time.Time) time.Time {
	y, m, d := t.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Hour returns the wall-clock hour of t in the calendar location.
func (c Calendar) Hour(t time.Time) int {
	return t.In(c.loc()).Hour()
}

// Normalize truncates an already-bucketed day value to midnight UTC.
func Normalize(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar day after day.
func NextDay(day time.Time) time.Time {
	return Normalize(day).AddDate(0, 0, 1)
}

// PrevDay returns the calendar day before day.
func PrevDay(day time.Time) time.Time {
	return Normalize(day).AddDate(0, 0, -1)
}

// FormatDay renders day as YYYY-MM-DD.
func FormatDay(day time.Time) string {
	return Normalize(day).Format(DateLayout)
}

// ParseDay parses YYYY-MM-DD, or an RFC3339 timestamp bucketed with cal.
func ParseDay(value string, cal Calendar) (time.Time, error) {
	if value == "" {
		return time.Time{}, Validationf("date is required")
	}
	if day, err := time.Parse(DateLayout, value); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, Validationf("invalid date %q", value)
	}
	return cal.Day(ts), nil
}

// CloseKey serialises day-end closes. It is always taken before a DayKey.
const CloseKey = "ledger:close"

// DayKey is the lock and cache key of a calendar day.
func DayKey(day time.Time) string {
	return fmt.Sprintf("ledger:%s", FormatDay(day))
}
