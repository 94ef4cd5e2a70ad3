package commands

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// seedLimit caps how many due tasks a fresh plan is seeded with.
const seedLimit = 5

// GetOrCreatePlanCommand fetches the plan for a week, creating and
// auto-seeding it when none exists yet.
type GetOrCreatePlanCommand struct {
	UserID uuid.UUID
	Year   int
	Week   int
}

// GetOrCreatePlanHandler handles the GetOrCreatePlanCommand.
type GetOrCreatePlanHandler struct {
	planRepo   plan.Repository
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewGetOrCreatePlanHandler creates a new GetOrCreatePlanHandler.
func NewGetOrCreatePlanHandler(planRepo plan.Repository, taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *GetOrCreatePlanHandler {
	return NewGetOrCreatePlanHandlerWithClock(planRepo, taskRepo, outboxRepo, uow, time.Now)
}

// NewGetOrCreatePlanHandlerWithClock creates a handler with an injected
// clock for the seeding cutoff.
func NewGetOrCreatePlanHandlerWithClock(planRepo plan.Repository, taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, now func() time.Time) *GetOrCreatePlanHandler {
	return &GetOrCreatePlanHandler{
		planRepo:   planRepo,
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        now,
	}
}

// Handle executes the GetOrCreatePlanCommand. A new plan is seeded with up
// to five of the owner's non-done tasks due now or earlier, highest
// priority first. Calling it twice for the same week returns the same plan.
func (h *GetOrCreatePlanHandler) Handle(ctx context.Context, cmd GetOrCreatePlanCommand) (*plan.WeeklyPlan, error) {
	existing, err := h.planRepo.FindByKey(ctx, cmd.UserID, cmd.Year, cmd.Week)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, plan.ErrPlanNotFound) {
		return nil, err
	}

	var created *plan.WeeklyPlan
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		seeds, err := h.taskRepo.FindDueForPlan(txCtx, cmd.UserID, h.now(), seedLimit)
		if err != nil {
			return err
		}

		seedIDs := make([]uuid.UUID, 0, len(seeds))
		for _, t := range seeds {
			seedIDs = append(seedIDs, t.ID())
		}

		p, err := plan.NewWeeklyPlan(cmd.UserID, cmd.Year, cmd.Week, seedIDs)
		if err != nil {
			return err
		}

		if err := h.planRepo.Save(txCtx, p); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, p.DomainEvents()); err != nil {
			return err
		}

		created = p
		return nil
	})
	if err == nil {
		return created, nil
	}

	// Another writer created the plan between our read and the insert.
	if errors.Is(err, plan.ErrDuplicatePlan) {
		return h.planRepo.FindByKey(ctx, cmd.UserID, cmd.Year, cmd.Week)
	}
	return nil, err
}
