// Package cycle computes the calendar layout of a mesocycle: its end date and
// the 7-day windows of its microcycles.
package cycle

import (
	"errors"
	"time"
)

const (
	MinWeeks    = 1
	MaxWeeks    = 52
	DaysPerWeek = 7
)

var ErrInvalidDuration = errors.New("duration must be between 1 and 52 weeks")

// Window is the date range of one microcycle. Start and End are both inclusive
// calendar days at UTC midnight.
type Window struct {
	Week  int
	Start time.Time
	End   time.Time
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateWeeks checks the duration bounds.
func ValidateWeeks(weeks int) error {
	if weeks < MinWeeks || weeks > MaxWeeks {
		return ErrInvalidDuration
	}
	return nil
}

// EndDate returns the last calendar day of a mesocycle: start + weeks*7 - 1 day.
func EndDate(start time.Time, weeks int) time.Time {
	return StartOfDay(start).AddDate(0, 0, weeks*DaysPerWeek-1)
}

// Windows lays out one contiguous, non-overlapping 7-day window per week,
// week N starting at start + (N-1)*7 days.
func Windows(start time.Time, weeks int) ([]Window, error) {
	if err := ValidateWeeks(weeks); err != nil {
		return nil, err
	}
	first := StartOfDay(start)
	windows := make([]Window, weeks)
	for i := range windows {
		s := first.AddDate(0, 0, i*DaysPerWeek)
		windows[i] = Window{
			Week:  i + 1,
			Start: s,
			End:   s.AddDate(0, 0, DaysPerWeek-1),
		}
	}
	return windows, nil
}

// WeekOf returns the week number containing t, or false when t is outside
// the mesocycle.
func WeekOf(start time.Time, weeks int, t time.Time) (int, bool) {
	first := StartOfDay(start)
	d := StartOfDay(t)
	if d.Before(first) {
		return 0, false
	}
	days := int(d.Sub(first).Hours() / 24)
	week := days/DaysPerWeek + 1
	if week > weeks {
		return 0, false
	}
	return week, true
}
