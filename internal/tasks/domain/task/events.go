package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated       = "tasks.task.created"
	RoutingKeyUpdated       = "tasks.task.updated"
	RoutingKeyStatusChanged = "tasks.task.status_changed"
	RoutingKeyCompleted     = "tasks.task.completed"
	RoutingKeyArchived      = "tasks.task.archived"
	RoutingKeyScheduled     = "tasks.task.scheduled"
	RoutingKeyDeleted       = "tasks.task.deleted"
	RoutingKeyRescored      = "tasks.task.rescored"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	Title string `json:"title"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID uuid.UUID, title string) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated),
		Title:     title,
	}
}

// TaskUpdated is emitted when task fields are updated.
type TaskUpdated struct {
	domain.BaseEvent
	Fields []string `json:"fields"` // Names of fields that were updated
}

// NewTaskUpdated creates a TaskUpdated event.
func NewTaskUpdated(taskID uuid.UUID, fields []string) *TaskUpdated {
	return &TaskUpdated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyUpdated),
		Fields:    fields,
	}
}

// TaskStatusChanged is emitted for status transitions other than completion
// and archival, which carry their own event types.
type TaskStatusChanged struct {
	domain.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewTaskStatusChanged creates a TaskStatusChanged event.
func NewTaskStatusChanged(taskID uuid.UUID, from, to string) *TaskStatusChanged {
	return &TaskStatusChanged{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyStatusChanged),
		From:      from,
		To:        to,
	}
}

// TaskCompleted is emitted when a task enters the done state.
type TaskCompleted struct {
	domain.BaseEvent
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID uuid.UUID) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
	}
}

// TaskArchived is emitted when a task is archived.
type TaskArchived struct {
	domain.BaseEvent
}

// NewTaskArchived creates a TaskArchived event.
func NewTaskArchived(taskID uuid.UUID) *TaskArchived {
	return &TaskArchived{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyArchived),
	}
}

// TaskScheduled is emitted when a task is placed into a weekly slot.
type TaskScheduled struct {
	domain.BaseEvent
	Year      int       `json:"year"`
	Week      int       `json:"week"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// NewTaskScheduled creates a TaskScheduled event.
func NewTaskScheduled(taskID uuid.UUID, year, week, dayOfWeek int, start, end time.Time) *TaskScheduled {
	return &TaskScheduled{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyScheduled),
		Year:      year,
		Week:      week,
		DayOfWeek: dayOfWeek,
		StartTime: start,
		EndTime:   end,
	}
}

// TaskDeleted is emitted when a task is tombstoned.
type TaskDeleted struct {
	domain.BaseEvent
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID uuid.UUID) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
	}
}

// TasksRescored is emitted after a bulk priority recompute run.
type TasksRescored struct {
	domain.BaseEvent
	TasksUpdated int `json:"tasks_updated"`
}

// NewTasksRescored creates a TasksRescored event. The aggregate is the user
// whose tasks were rescored.
func NewTasksRescored(userID uuid.UUID, tasksUpdated int) *TasksRescored {
	return &TasksRescored{
		BaseEvent:    domain.NewBaseEvent(userID, "User", RoutingKeyRescored),
		TasksUpdated: tasksUpdated,
	}
}
