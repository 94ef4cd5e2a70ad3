package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/application/services"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// CreateTaskCommand contains the data needed to create a task. Title and
// CategoryID are required, everything else is optional.
type CreateTaskCommand struct {
	UserID           uuid.UUID
	Title            string
	Description      string
	StartDate        *time.Time
	DueDate          *time.Time
	CategoryID       *uuid.UUID
	Tags             []string
	EstimatedMinutes *int
	EnergyLevel      *int
	FocusLevel       *int
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID        uuid.UUID
	PriorityScore int
	Priority      string
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	engine     *services.PriorityEngine
	uow        sharedApplication.UnitOfWork
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, engine *services.PriorityEngine, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	if engine == nil {
		engine = services.NewPriorityEngine()
	}
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		engine:     engine,
		uow:        uow,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	if cmd.CategoryID == nil {
		return nil, task.ErrMissingCategory
	}

	var result *CreateTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := task.NewTask(cmd.UserID, cmd.Title)
		if err != nil {
			return err
		}

		if cmd.Description != "" {
			if err := t.SetDescription(cmd.Description); err != nil {
				return err
			}
		}
		if cmd.StartDate != nil {
			if err := t.SetStartDate(cmd.StartDate); err != nil {
				return err
			}
		}
		if cmd.DueDate != nil {
			if err := t.SetDueDate(cmd.DueDate); err != nil {
				return err
			}
		}
		if err := t.SetCategory(cmd.CategoryID); err != nil {
			return err
		}
		if len(cmd.Tags) > 0 {
			if err := t.SetTags(cmd.Tags); err != nil {
				return err
			}
		}
		if cmd.EstimatedMinutes != nil {
			if err := t.SetEstimatedMinutes(cmd.EstimatedMinutes); err != nil {
				return err
			}
		}
		if cmd.EnergyLevel != nil {
			if err := t.SetEnergyLevel(cmd.EnergyLevel); err != nil {
				return err
			}
		}
		if cmd.FocusLevel != nil {
			if err := t.SetFocusLevel(cmd.FocusLevel); err != nil {
				return err
			}
		}

		h.engine.Rescore(t)

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents()); err != nil {
			return err
		}

		result = &CreateTaskResult{
			TaskID:        t.ID(),
			PriorityScore: t.PriorityScore(),
			Priority:      t.Priority().String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
