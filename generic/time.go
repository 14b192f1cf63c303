package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME OF DAY - Wall-clock time without a date (shift boundaries)
// =============================================================================

// TimeOfDay is a wall-clock time stored as seconds since midnight.
// The zero value is "not set"; midnight is represented with Valid=true.
type TimeOfDay struct {
	Seconds int64
	Valid   bool
}

// NewTimeOfDay builds a TimeOfDay from hour, minute and second.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{Seconds: int64(hour*3600 + minute*60 + second), Valid: true}
}

// ParseTimeOfDay accepts "15:04" or "15:04:05". Empty input yields an unset value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}, nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidFormat, s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

func (t TimeOfDay) String() string {
	if !t.Valid {
		return ""
	}
	return FormatClock(t.Seconds)
}

// On places the time of day on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	return StartOfDay(date).Add(time.Duration(t.Seconds) * time.Second)
}

// SecondsOfDay returns the seconds elapsed since midnight, dropping sub-second precision.
func SecondsOfDay(t time.Time) int64 {
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthsBetween is the plain calendar-month difference (to - from), ignoring days.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
