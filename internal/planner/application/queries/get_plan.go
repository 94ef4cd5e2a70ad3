// Package queries contains read operations for the planner context.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// PlanTaskDTO is a member task summary embedded in a plan read model.
type PlanTaskDTO struct {
	ID            uuid.UUID
	Title         string
	Status        string
	Priority      string
	PriorityScore int
	DueDate       *time.Time
	HasConflict   bool
}

// PlanDTO is the read model for a weekly plan with its members resolved.
type PlanDTO struct {
	ID             uuid.UUID
	Year           int
	Week           int
	TargetTasks    int
	CompletedTasks int
	Locked         bool
	Notes          string
	Tasks          []PlanTaskDTO
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GetPlanQuery contains the parameters for fetching a plan by week.
type GetPlanQuery struct {
	UserID uuid.UUID
	Year   int
	Week   int
}

// GetPlanHandler handles the GetPlanQuery.
type GetPlanHandler struct {
	planRepo plan.Repository
	taskRepo task.Repository
}

// NewGetPlanHandler creates a new GetPlanHandler.
func NewGetPlanHandler(planRepo plan.Repository, taskRepo task.Repository) *GetPlanHandler {
	return &GetPlanHandler{planRepo: planRepo, taskRepo: taskRepo}
}

// Handle executes the GetPlanQuery. Members are returned in plan order;
// deleted tasks are silently skipped.
func (h *GetPlanHandler) Handle(ctx context.Context, query GetPlanQuery) (*PlanDTO, error) {
	p, err := h.planRepo.FindByKey(ctx, query.UserID, query.Year, query.Week)
	if err != nil {
		return nil, err
	}
	if p.UserID() != query.UserID {
		return nil, plan.ErrPlanNotFound
	}

	memberIDs := p.TaskIDs()
	members, err := h.taskRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*task.Task, len(members))
	for _, t := range members {
		byID[t.ID()] = t
	}

	dto := &PlanDTO{
		ID:             p.ID(),
		Year:           p.Year(),
		Week:           p.Week(),
		TargetTasks:    p.TargetTasks(),
		CompletedTasks: p.CompletedTasks(),
		Locked:         p.Locked(),
		Notes:          p.Notes(),
		Tasks:          make([]PlanTaskDTO, 0, len(members)),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}

	for _, id := range memberIDs {
		t, ok := byID[id]
		if !ok {
			continue
		}
		dto.Tasks = append(dto.Tasks, PlanTaskDTO{
			ID:            t.ID(),
			Title:         t.Title(),
			Status:        t.Status().String(),
			Priority:      t.Priority().String(),
			PriorityScore: t.PriorityScore(),
			DueDate:       t.DueDate(),
			HasConflict:   t.HasConflict(),
		})
	}

	return dto, nil
}
