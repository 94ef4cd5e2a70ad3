package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/application/services"
	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// UnscheduleTaskCommand removes a task from its weekly slot.
type UnscheduleTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// UnscheduleTaskHandler handles the UnscheduleTaskCommand.
type UnscheduleTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	detector   *services.ConflictDetector
}

// NewUnscheduleTaskHandler creates a new UnscheduleTaskHandler.
func NewUnscheduleTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, detector *services.ConflictDetector) *UnscheduleTaskHandler {
	return &UnscheduleTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		detector:   detector,
	}
}

// Handle executes the UnscheduleTaskCommand. Removing a task without a
// slot is a no-op.
func (h *UnscheduleTaskHandler) Handle(ctx context.Context, cmd UnscheduleTaskCommand) error {
	var oldBucket *bucket

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if t.Year() == nil {
			return nil
		}
		oldBucket = &bucket{year: *t.Year(), week: *t.Week(), dayOfWeek: *t.DayOfWeek()}

		if err := t.ClearSchedule(); err != nil {
			return err
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents())
	})
	if err != nil {
		return err
	}

	if oldBucket == nil {
		return nil
	}
	return h.detector.RefreshBucket(ctx, cmd.UserID, oldBucket.year, oldBucket.week, oldBucket.dayOfWeek)
}
