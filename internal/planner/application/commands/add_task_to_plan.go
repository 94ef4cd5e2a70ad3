package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// AddTaskToPlanCommand adds a task to an open weekly plan.
type AddTaskToPlanCommand struct {
	UserID uuid.UUID
	PlanID uuid.UUID
	TaskID uuid.UUID
}

// AddTaskToPlanHandler handles the AddTaskToPlanCommand.
type AddTaskToPlanHandler struct {
	planRepo   plan.Repository
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewAddTaskToPlanHandler creates a new AddTaskToPlanHandler.
func NewAddTaskToPlanHandler(planRepo plan.Repository, taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *AddTaskToPlanHandler {
	return &AddTaskToPlanHandler{
		planRepo:   planRepo,
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the AddTaskToPlanCommand. Both the plan and the task
// must belong to the caller. Adding a member that is already present is a
// no-op apart from re-deriving the target count.
func (h *AddTaskToPlanHandler) Handle(ctx context.Context, cmd AddTaskToPlanCommand) (*plan.WeeklyPlan, error) {
	var updated *plan.WeeklyPlan

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		p, err := h.planRepo.FindByID(txCtx, cmd.PlanID)
		if err != nil {
			return err
		}
		if p.UserID() != cmd.UserID {
			return plan.ErrPlanNotFound
		}

		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if err := p.AddTask(t.ID()); err != nil {
			return err
		}

		if err := h.planRepo.Save(txCtx, p); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, p.DomainEvents()); err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
