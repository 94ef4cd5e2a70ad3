// Package slot builds absolute timestamps for weekly scheduling slots.
package slot

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidClock = errors.New("clock time must be HH:MM in 24-hour format")
	ErrInvalidRange = errors.New("start time must be before end time")
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a "HH:MM" 24-hour clock string. All four positions
// must be digits, so signed forms like "+9:05" are rejected.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, ErrInvalidClock
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return Clock{}, ErrInvalidClock
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return Clock{}, ErrInvalidClock
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Build converts a (year, week, dayOfWeek, clock) tuple into an absolute
// timestamp. Day-of-week numbering is Monday-first: 1=Monday .. 7=Sunday.
//
// The week computation is a deliberate simplification, not strict ISO-8601:
// it advances (week-1)*7 days from January 1 and rolls to the Monday of the
// resulting week, without anchoring week 1 to the first Thursday of the
// year. Callers validate week in [1,53] and dayOfWeek in [1,7]; Build
// itself is pure and total for any input.
func Build(year, week, dayOfWeek int, c Clock) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	approx := jan1.AddDate(0, 0, (week-1)*7)

	// Monday-first weekday numbering with Sunday = 7.
	weekday := int(approx.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := approx.AddDate(0, 0, -(weekday - 1))

	day := monday.AddDate(0, 0, dayOfWeek-1)
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, time.UTC)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not count as overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}
