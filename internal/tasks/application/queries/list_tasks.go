// Package queries contains read operations for the tasks context.
package queries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/tasks/domain/category"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Status           string
	Priority         string
	PriorityScore    int
	StartDate        *time.Time
	DueDate          *time.Time
	StartTime        *time.Time
	EndTime          *time.Time
	Year             *int
	Week             *int
	DayOfWeek        *int
	HasConflict      bool
	CategoryID       *uuid.UUID
	CategoryName     string
	Tags             []string
	EstimatedMinutes *int
	ActualMinutes    *int
	EnergyLevel      *int
	FocusLevel       *int
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	UserID          uuid.UUID
	Status          string // "todo", "in_progress", "done", "archived" or "" for active
	IncludeArchived bool
	Priority        string     // "urgent", "high", "medium", "low"
	DueBefore       *time.Time
	DueAfter        *time.Time
	Overdue         bool
	SortBy          string // "priority", "due_date", "created_at"
	SortOrder       string // "asc", "desc"
	Limit           int    // 0 = no limit
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo     task.Repository
	categoryRepo category.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository, categoryRepo category.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// Handle executes the ListTasksQuery. Deleted tasks are never returned and
// archived tasks only appear when asked for.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	filter := task.Filter{IncludeArchived: query.IncludeArchived}
	if query.Status != "" {
		status, err := task.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
		filter.IncludeArchived = filter.IncludeArchived || status == task.StatusArchived
	}

	tasks, err := h.taskRepo.FindByUserID(ctx, query.UserID, filter)
	if err != nil {
		return nil, err
	}

	if query.Priority != "" {
		tasks = filterByPriority(tasks, query.Priority)
	}
	if query.Overdue {
		tasks = filterOverdue(tasks, time.Now())
	}
	if query.DueBefore != nil {
		tasks = filterDue(tasks, func(due time.Time) bool { return due.Before(*query.DueBefore) })
	}
	if query.DueAfter != nil {
		tasks = filterDue(tasks, func(due time.Time) bool { return due.After(*query.DueAfter) })
	}

	sortTasks(tasks, query.SortBy, query.SortOrder)

	if query.Limit > 0 && len(tasks) > query.Limit {
		tasks = tasks[:query.Limit]
	}

	names, err := h.resolveCategoryNames(ctx, tasks)
	if err != nil {
		return nil, err
	}

	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t, names)
	}
	return dtos, nil
}

func (h *ListTasksHandler) resolveCategoryNames(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]string, error) {
	if h.categoryRepo == nil {
		return nil, nil
	}
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		if id := t.CategoryID(); id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return h.categoryRepo.ResolveNames(ctx, ids)
}

func filterByPriority(tasks []*task.Task, priority string) []*task.Task {
	var filtered []*task.Task
	for _, t := range tasks {
		if t.Priority().String() == priority {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func filterOverdue(tasks []*task.Task, now time.Time) []*task.Task {
	var filtered []*task.Task
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, t := range tasks {
		if t.DueDate() != nil && t.DueDate().Before(today) && !t.IsDone() {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func filterDue(tasks []*task.Task, keep func(time.Time) bool) []*task.Task {
	var filtered []*task.Task
	for _, t := range tasks {
		if t.DueDate() != nil && keep(*t.DueDate()) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func sortTasks(tasks []*task.Task, sortBy, sortOrder string) {
	if sortBy == "" {
		sortBy = "priority"
	}
	desc := sortOrder != "asc"

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if desc {
			a, b = b, a
		}
		switch sortBy {
		case "due_date":
			// Undated tasks sort last either way.
			switch {
			case tasks[i].DueDate() == nil:
				return false
			case tasks[j].DueDate() == nil:
				return true
			}
			return a.DueDate().Before(*b.DueDate())
		case "created_at":
			return a.CreatedAt().Before(b.CreatedAt())
		default:
			return a.PriorityScore() < b.PriorityScore()
		}
	})
}

func toTaskDTO(t *task.Task, categoryNames map[uuid.UUID]string) TaskDTO {
	dto := TaskDTO{
		ID:               t.ID(),
		Title:            t.Title(),
		Description:      t.Description(),
		Status:           t.Status().String(),
		Priority:         t.Priority().String(),
		PriorityScore:    t.PriorityScore(),
		StartDate:        t.StartDate(),
		DueDate:          t.DueDate(),
		StartTime:        t.StartTime(),
		EndTime:          t.EndTime(),
		Year:             t.Year(),
		Week:             t.Week(),
		DayOfWeek:        t.DayOfWeek(),
		HasConflict:      t.HasConflict(),
		CategoryID:       t.CategoryID(),
		Tags:             t.Tags(),
		EstimatedMinutes: t.EstimatedMinutes(),
		ActualMinutes:    t.ActualMinutes(),
		EnergyLevel:      t.EnergyLevel(),
		FocusLevel:       t.FocusLevel(),
		CompletedAt:      t.CompletedAt(),
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
	}
	if id := t.CategoryID(); id != nil {
		dto.CategoryName = categoryNames[*id]
	}
	return dto
}
