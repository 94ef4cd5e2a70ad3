package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

// State carries a task's persisted fields for rehydration.
type State struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Title              string
	Description        string
	Status             Status
	StartDate          *time.Time
	DueDate            *time.Time
	StartTime          *time.Time
	EndTime            *time.Time
	Year               *int
	Week               *int
	DayOfWeek          *int
	HasConflict        bool
	PriorityScore      int
	Priority           value_objects.Priority
	LastPriorityCalcAt *time.Time
	EstimatedMinutes   *int
	ActualMinutes      *int
	EnergyLevel        *int
	FocusLevel         *int
	CategoryID         *uuid.UUID
	Tags               []string
	CompletedAt        *time.Time
	IsDeleted          bool
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Rehydrate reconstructs a task from persisted state without emitting events.
func Rehydrate(s State) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		userID:             s.UserID,
		title:              s.Title,
		description:        s.Description,
		status:             s.Status,
		startDate:          s.StartDate,
		dueDate:            s.DueDate,
		startTime:          s.StartTime,
		endTime:            s.EndTime,
		year:               s.Year,
		week:               s.Week,
		dayOfWeek:          s.DayOfWeek,
		hasConflict:        s.HasConflict,
		priorityScore:      s.PriorityScore,
		priority:           s.Priority,
		lastPriorityCalcAt: s.LastPriorityCalcAt,
		estimatedMinutes:   s.EstimatedMinutes,
		actualMinutes:      s.ActualMinutes,
		energyLevel:        s.EnergyLevel,
		focusLevel:         s.FocusLevel,
		categoryID:         s.CategoryID,
		tags:               s.Tags,
		completedAt:        s.CompletedAt,
		isDeleted:          s.IsDeleted,
	}
}
