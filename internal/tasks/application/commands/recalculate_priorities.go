package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/domain"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/application/services"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// RecalculatePrioritiesCommand triggers the bulk score sweep across all
// open tasks. Done and archived tasks are skipped and keep their last
// score. Idempotent: a second run on the same day with no intervening
// changes produces identical scores.
type RecalculatePrioritiesCommand struct{}

// RecalculatePrioritiesResult describes the outcome of the sweep.
type RecalculatePrioritiesResult struct {
	TasksUpdated int
}

// RecalculatePrioritiesHandler recalculates priority scores and tiers.
type RecalculatePrioritiesHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	engine     *services.PriorityEngine
	uow        sharedApplication.UnitOfWork
}

// NewRecalculatePrioritiesHandler creates a new handler.
func NewRecalculatePrioritiesHandler(
	taskRepo task.Repository,
	outboxRepo outbox.Repository,
	engine *services.PriorityEngine,
	uow sharedApplication.UnitOfWork,
) *RecalculatePrioritiesHandler {
	if engine == nil {
		engine = services.NewPriorityEngine()
	}
	return &RecalculatePrioritiesHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		engine:     engine,
		uow:        uow,
	}
}

// Handle executes the recalculation.
func (h *RecalculatePrioritiesHandler) Handle(ctx context.Context, cmd RecalculatePrioritiesCommand) (*RecalculatePrioritiesResult, error) {
	var result RecalculatePrioritiesResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		tasks, err := h.taskRepo.FindForRecalc(txCtx)
		if err != nil {
			return err
		}

		perUser := make(map[uuid.UUID]int)
		for _, tk := range tasks {
			h.engine.Rescore(tk)
			if err := h.taskRepo.Save(txCtx, tk); err != nil {
				return err
			}
			perUser[tk.UserID()]++
			result.TasksUpdated++
		}

		for userID, count := range perUser {
			event := task.NewTasksRescored(userID, count)
			if err := stageEvents(txCtx, h.outboxRepo, userID, []domain.DomainEvent{event}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
