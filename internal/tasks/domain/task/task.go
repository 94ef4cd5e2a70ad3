// Package task contains the task aggregate and its lifecycle rules.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

var (
	ErrEmptyTitle      = errors.New("task title cannot be empty")
	ErrMissingCategory = errors.New("task category is required")
	ErrTaskArchived    = errors.New("task is archived")
	ErrTaskDeleted     = errors.New("task is deleted")
	ErrNotArchived     = errors.New("only archived tasks can be deleted")
	ErrInvalidSlot     = errors.New("start time must be before end time")
	ErrInvalidWeek     = errors.New("week must be between 1 and 53")
	ErrInvalidDay      = errors.New("day of week must be between 1 and 7")
	ErrInvalidLevel    = errors.New("energy and focus levels must be between 1 and 5")
	ErrNegativeMinutes = errors.New("minutes cannot be negative")
)

// Task represents a unit of work owned by a single user. Beyond the usual
// title/status/due-date axis it carries an optional weekly scheduling slot
// and a derived priority score.
type Task struct {
	domain.BaseAggregateRoot
	userID      uuid.UUID
	title       string
	description string
	status      Status
	startDate   *time.Time
	dueDate     *time.Time

	// Weekly scheduling slot. Either all of startTime/endTime/year/week/
	// dayOfWeek are set, or none are.
	startTime   *time.Time
	endTime     *time.Time
	year        *int
	week        *int
	dayOfWeek   *int
	hasConflict bool

	priorityScore      int
	priority           value_objects.Priority
	lastPriorityCalcAt *time.Time

	estimatedMinutes *int
	actualMinutes    *int
	energyLevel      *int
	focusLevel       *int

	categoryID  *uuid.UUID
	tags        []string
	completedAt *time.Time
	isDeleted   bool
}

// NewTask creates a new task with the given title.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		status:            StatusTodo,
		priority:          value_objects.PriorityLow,
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), t.title))

	return t, nil
}

// Getters

func (t *Task) UserID() uuid.UUID                    { return t.userID }
func (t *Task) Title() string                        { return t.title }
func (t *Task) Description() string                  { return t.description }
func (t *Task) Status() Status                       { return t.status }
func (t *Task) StartDate() *time.Time                { return t.startDate }
func (t *Task) DueDate() *time.Time                  { return t.dueDate }
func (t *Task) StartTime() *time.Time                { return t.startTime }
func (t *Task) EndTime() *time.Time                  { return t.endTime }
func (t *Task) Year() *int                           { return t.year }
func (t *Task) Week() *int                           { return t.week }
func (t *Task) DayOfWeek() *int                      { return t.dayOfWeek }
func (t *Task) HasConflict() bool                    { return t.hasConflict }
func (t *Task) PriorityScore() int                   { return t.priorityScore }
func (t *Task) Priority() value_objects.Priority     { return t.priority }
func (t *Task) LastPriorityCalcAt() *time.Time       { return t.lastPriorityCalcAt }
func (t *Task) EstimatedMinutes() *int               { return t.estimatedMinutes }
func (t *Task) ActualMinutes() *int                  { return t.actualMinutes }
func (t *Task) EnergyLevel() *int                    { return t.energyLevel }
func (t *Task) FocusLevel() *int                     { return t.focusLevel }
func (t *Task) CategoryID() *uuid.UUID               { return t.categoryID }
func (t *Task) Tags() []string                       { return t.tags }
func (t *Task) CompletedAt() *time.Time              { return t.completedAt }
func (t *Task) IsDeleted() bool                      { return t.isDeleted }
func (t *Task) IsDone() bool                         { return t.status == StatusDone }
func (t *Task) IsArchived() bool                     { return t.status == StatusArchived }

// IsScheduled returns true when the task occupies a weekly slot.
func (t *Task) IsScheduled() bool {
	return t.startTime != nil && t.endTime != nil &&
		t.year != nil && t.week != nil && t.dayOfWeek != nil
}

func (t *Task) guardMutable() error {
	if t.isDeleted {
		return ErrTaskDeleted
	}
	if t.IsArchived() {
		return ErrTaskArchived
	}
	return nil
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	t.description = strings.TrimSpace(description)
	t.Touch()
	return nil
}

// SetStartDate updates the optional start date on the deadline axis.
func (t *Task) SetStartDate(startDate *time.Time) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	t.startDate = startDate
	t.Touch()
	return nil
}

// SetDueDate updates the due date.
func (t *Task) SetDueDate(dueDate *time.Time) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	t.dueDate = dueDate
	t.Touch()
	return nil
}

// SetCategory updates the category reference.
func (t *Task) SetCategory(categoryID *uuid.UUID) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	t.categoryID = categoryID
	t.Touch()
	return nil
}

// SetTags replaces the task tags.
func (t *Task) SetTags(tags []string) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	t.tags = cleaned
	t.Touch()
	return nil
}

// SetEstimatedMinutes updates the effort estimate.
func (t *Task) SetEstimatedMinutes(minutes *int) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	if minutes != nil && *minutes < 0 {
		return ErrNegativeMinutes
	}
	t.estimatedMinutes = minutes
	t.Touch()
	return nil
}

// SetActualMinutes updates the recorded effort.
func (t *Task) SetActualMinutes(minutes *int) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	if minutes != nil && *minutes < 0 {
		return ErrNegativeMinutes
	}
	t.actualMinutes = minutes
	t.Touch()
	return nil
}

// SetEnergyLevel updates the energy level (1-5).
func (t *Task) SetEnergyLevel(level *int) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	if level != nil && (*level < 1 || *level > 5) {
		return ErrInvalidLevel
	}
	t.energyLevel = level
	t.Touch()
	return nil
}

// SetFocusLevel updates the focus level (1-5).
func (t *Task) SetFocusLevel(level *int) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	if level != nil && (*level < 1 || *level > 5) {
		return ErrInvalidLevel
	}
	t.focusLevel = level
	t.Touch()
	return nil
}

// SetStatus moves the task to the given state. Any state may move to any
// other; transitions trigger side effects rather than being restricted.
func (t *Task) SetStatus(next Status) error {
	if t.isDeleted {
		return ErrTaskDeleted
	}
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if t.status == next {
		return nil // Idempotent
	}

	prev := t.status
	t.status = next

	switch {
	case next == StatusDone:
		now := time.Now().UTC()
		t.completedAt = &now
		// A completed task carries no urgency.
		t.priorityScore = 0
		t.priority = value_objects.PriorityLow
		t.AddDomainEvent(NewTaskCompleted(t.ID()))
	case prev == StatusDone:
		t.completedAt = nil
		t.AddDomainEvent(NewTaskStatusChanged(t.ID(), prev.String(), next.String()))
	case next == StatusArchived:
		t.AddDomainEvent(NewTaskArchived(t.ID()))
	default:
		t.AddDomainEvent(NewTaskStatusChanged(t.ID(), prev.String(), next.String()))
	}

	t.Touch()
	return nil
}

// Schedule places the task into a weekly slot. Callers run conflict
// detection afterwards and persist the resulting flag via SetHasConflict.
func (t *Task) Schedule(year, week, dayOfWeek int, start, end time.Time) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	if week < 1 || week > 53 {
		return ErrInvalidWeek
	}
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return ErrInvalidDay
	}
	if !start.Before(end) {
		return ErrInvalidSlot
	}

	t.year = &year
	t.week = &week
	t.dayOfWeek = &dayOfWeek
	t.startTime = &start
	t.endTime = &end
	t.Touch()

	t.AddDomainEvent(NewTaskScheduled(t.ID(), year, week, dayOfWeek, start, end))

	return nil
}

// ClearSchedule removes the task from its weekly slot.
func (t *Task) ClearSchedule() error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	t.year = nil
	t.week = nil
	t.dayOfWeek = nil
	t.startTime = nil
	t.endTime = nil
	t.hasConflict = false
	t.Touch()
	return nil
}

// SetHasConflict records the conflict detector's verdict for this task.
func (t *Task) SetHasConflict(hasConflict bool) {
	if t.hasConflict == hasConflict {
		return
	}
	t.hasConflict = hasConflict
	t.Touch()
}

// SetPriority overrides the priority tier manually. The next score
// recomputation derives it from the score inputs again.
func (t *Task) SetPriority(p value_objects.Priority) error {
	if err := t.guardMutable(); err != nil {
		return err
	}
	if !p.IsValid() {
		return value_objects.ErrInvalidPriority
	}
	t.priority = p
	t.Touch()
	return nil
}

// ApplyScore records a freshly computed priority score and tier.
func (t *Task) ApplyScore(score int, priority value_objects.Priority, at time.Time) {
	t.priorityScore = score
	t.priority = priority
	calcAt := at.UTC()
	t.lastPriorityCalcAt = &calcAt
	t.Touch()
}

// MarkDeleted tombstones the task. Only archived tasks may be deleted, and
// the record is never physically removed.
func (t *Task) MarkDeleted() error {
	if t.isDeleted {
		return nil // Idempotent
	}
	if !t.IsArchived() {
		return ErrNotArchived
	}
	t.isDeleted = true
	t.Touch()
	t.AddDomainEvent(NewTaskDeleted(t.ID()))
	return nil
}
