package task

import (
	"errors"
	"strings"
)

// Status represents the task lifecycle state.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusDone
	StatusArchived
)

// ErrInvalidStatus is returned when parsing an unknown status string.
var ErrInvalidStatus = errors.New("invalid task status")

var statusNames = map[Status]string{
	StatusTodo:       "todo",
	StatusInProgress: "in_progress",
	StatusDone:       "done",
	StatusArchived:   "archived",
}

var statusValues = map[string]Status{
	"todo":        StatusTodo,
	"in_progress": StatusInProgress,
	"done":        StatusDone,
	"archived":    StatusArchived,
}

// ParseStatus creates a Status from a string.
func ParseStatus(s string) (Status, error) {
	status, ok := statusValues[strings.ToLower(s)]
	if !ok {
		return StatusTodo, ErrInvalidStatus
	}
	return status, nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsActive returns true for statuses that appear on the default board.
func (s Status) IsActive() bool {
	return s == StatusTodo || s == StatusInProgress
}
