package plan

import (
	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
)

const (
	AggregateType = "WeeklyPlan"

	RoutingKeyCreated   = "planner.plan.created"
	RoutingKeyTaskAdded = "planner.plan.task_added"
	RoutingKeyClosed    = "planner.plan.closed"
)

// PlanCreated is emitted when a weekly plan is created.
type PlanCreated struct {
	domain.BaseEvent
	Year      int `json:"year"`
	Week      int `json:"week"`
	SeedCount int `json:"seed_count"`
}

// NewPlanCreated creates a PlanCreated event.
func NewPlanCreated(planID uuid.UUID, year, week, seedCount int) *PlanCreated {
	return &PlanCreated{
		BaseEvent: domain.NewBaseEvent(planID, AggregateType, RoutingKeyCreated),
		Year:      year,
		Week:      week,
		SeedCount: seedCount,
	}
}

// PlanTaskAdded is emitted when a task joins a plan.
type PlanTaskAdded struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
}

// NewPlanTaskAdded creates a PlanTaskAdded event.
func NewPlanTaskAdded(planID, taskID uuid.UUID) *PlanTaskAdded {
	return &PlanTaskAdded{
		BaseEvent: domain.NewBaseEvent(planID, AggregateType, RoutingKeyTaskAdded),
		TaskID:    taskID,
	}
}

// PlanClosed is emitted when a week is closed out.
type PlanClosed struct {
	domain.BaseEvent
	Year           int `json:"year"`
	Week           int `json:"week"`
	CompletedTasks int `json:"completed_tasks"`
	TargetTasks    int `json:"target_tasks"`
}

// NewPlanClosed creates a PlanClosed event.
func NewPlanClosed(planID uuid.UUID, year, week, completedTasks, targetTasks int) *PlanClosed {
	return &PlanClosed{
		BaseEvent:      domain.NewBaseEvent(planID, AggregateType, RoutingKeyClosed),
		Year:           year,
		Week:           week,
		CompletedTasks: completedTasks,
		TargetTasks:    targetTasks,
	}
}
