package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/tasks/domain/category"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// GetTaskQuery contains the parameters for getting a single task.
type GetTaskQuery struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo     task.Repository
	categoryRepo category.Repository
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository, categoryRepo category.Repository) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// Handle executes the GetTaskQuery. A task owned by another user is reported
// as not found.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	t, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != query.UserID {
		return nil, task.ErrTaskNotFound
	}

	var names map[uuid.UUID]string
	if h.categoryRepo != nil && t.CategoryID() != nil {
		names, err = h.categoryRepo.ResolveNames(ctx, []uuid.UUID{*t.CategoryID()})
		if err != nil {
			return nil, err
		}
	}

	dto := toTaskDTO(t, names)
	return &dto, nil
}
