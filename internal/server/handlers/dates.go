package handlers

import (
	"time"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// Dates buckets request dates with the farm calendar.
type Dates struct {
	Calendar models.Calendar
	Now      func() time.Time
}

// Today returns the current calendar day.
func (d Dates) Today() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return d.Calendar.Day(now())
}

// ParseOrToday parses value, defaulting to today when it is empty.
func (d Dates) ParseOrToday(value string) (time.Time, error) {
	if value == "" {
		return d.Today(), nil
	}
	return models.ParseDay(value, d.Calendar)
}

// ParseOptional parses value into a pointer, nil when empty.
func (d Dates) ParseOptional(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := models.ParseDay(value, d.Calendar)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
