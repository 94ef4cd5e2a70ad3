package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/bucketlock"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// planLockTTL bounds how long a crashed holder can stall a plan close.
const planLockTTL = 10 * time.Second

// CloseWeekCommand closes out a weekly plan, recording how many of its
// members were completed and locking it for good.
type CloseWeekCommand struct {
	UserID uuid.UUID
	PlanID uuid.UUID
}

// CloseWeekHandler handles the CloseWeekCommand.
type CloseWeekHandler struct {
	planRepo   plan.Repository
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	locker     bucketlock.Locker
}

// NewCloseWeekHandler creates a new CloseWeekHandler.
func NewCloseWeekHandler(planRepo plan.Repository, taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, locker bucketlock.Locker) *CloseWeekHandler {
	if locker == nil {
		locker = bucketlock.NewNoopLocker()
	}
	return &CloseWeekHandler{
		planRepo:   planRepo,
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		locker:     locker,
	}
}

// Handle executes the CloseWeekCommand. The completed count is derived
// from the members' statuses at close time, never supplied by the caller.
func (h *CloseWeekHandler) Handle(ctx context.Context, cmd CloseWeekCommand) (*plan.WeeklyPlan, error) {
	p, err := h.planRepo.FindByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if p.UserID() != cmd.UserID {
		return nil, plan.ErrPlanNotFound
	}

	lock, err := h.locker.Acquire(ctx, bucketlock.PlanKey(cmd.UserID, p.Year(), p.Week()), planLockTTL)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	var closed *plan.WeeklyPlan
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		// Reload under the lock so a concurrent close is observed.
		p, err := h.planRepo.FindByID(txCtx, cmd.PlanID)
		if err != nil {
			return err
		}
		if p.UserID() != cmd.UserID {
			return plan.ErrPlanNotFound
		}

		members, err := h.taskRepo.FindByIDs(txCtx, p.TaskIDs())
		if err != nil {
			return err
		}

		completed := 0
		for _, t := range members {
			if t.Status() == task.StatusDone {
				completed++
			}
		}

		if err := p.Close(completed); err != nil {
			return err
		}

		if err := h.planRepo.Save(txCtx, p); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, p.DomainEvents()); err != nil {
			return err
		}

		closed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}
