// Package value_objects contains immutable domain values for the tasks context.
package value_objects

import (
	"errors"
	"strings"
)

// Priority represents the urgency tier derived from a task's score.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// Classification thresholds, inclusive lower bounds.
const (
	urgentThreshold = 45
	highThreshold   = 30
	mediumThreshold = 15
)

var (
	ErrInvalidPriority = errors.New("invalid priority value")
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
	PriorityUrgent: "urgent",
}

var priorityValues = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
	"urgent": PriorityUrgent,
}

// ParsePriority creates a Priority from a string.
func ParsePriority(s string) (Priority, error) {
	p, ok := priorityValues[strings.ToLower(s)]
	if !ok {
		return PriorityLow, ErrInvalidPriority
	}
	return p, nil
}

// PriorityFromScore maps a priority score onto its tier. Total for any
// integer input, evaluated from the highest threshold down.
func PriorityFromScore(score int) Priority {
	switch {
	case score >= urgentThreshold:
		return PriorityUrgent
	case score >= highThreshold:
		return PriorityHigh
	case score >= mediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the priority is a valid value.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}
