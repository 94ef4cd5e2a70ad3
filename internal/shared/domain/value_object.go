package domain

import "fmt"

// ValueObject represents an immutable domain concept defined by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// WeekRef identifies a planning week: a (year, ISO week) pair shared
// between the task and planner contexts.
type WeekRef struct {
	year int
	week int
}

// NewWeekRef creates a WeekRef. Week must be in [1,53].
func NewWeekRef(year, week int) (WeekRef, error) {
	if week < 1 || week > 53 {
		return WeekRef{}, fmt.Errorf("week must be between 1 and 53, got %d", week)
	}
	if year < 1 {
		return WeekRef{}, fmt.Errorf("year must be positive, got %d", year)
	}
	return WeekRef{year: year, week: week}, nil
}

// RehydrateWeekRef reconstructs a WeekRef from persisted state without
// validation.
func RehydrateWeekRef(year, week int) WeekRef {
	return WeekRef{year: year, week: week}
}

// Year returns the calendar year.
func (w WeekRef) Year() int { return w.year }

// Week returns the ISO week number.
func (w WeekRef) Week() int { return w.week }

// String returns a "YYYY-Www" representation, e.g. "2026-W07".
func (w WeekRef) String() string {
	return fmt.Sprintf("%04d-W%02d", w.year, w.week)
}

// Equals checks if two WeekRefs identify the same week.
func (w WeekRef) Equals(other ValueObject) bool {
	if o, ok := other.(WeekRef); ok {
		return w.year == o.year && w.week == o.week
	}
	return false
}
