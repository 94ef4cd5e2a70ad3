package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/application/services"
	"github.com/minhle/planwise/internal/planner/domain/slot"
	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// ScheduleTaskCommand places a task into a weekly time slot. Clocks are
// "HH:MM" strings interpreted in UTC.
type ScheduleTaskCommand struct {
	UserID     uuid.UUID
	TaskID     uuid.UUID
	Year       int
	Week       int
	DayOfWeek  int
	StartClock string
	EndClock   string
}

// ScheduleTaskResult reports where the task landed and whether it now
// overlaps a sibling.
type ScheduleTaskResult struct {
	HasConflict bool
}

// ScheduleTaskHandler handles the ScheduleTaskCommand.
type ScheduleTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	detector   *services.ConflictDetector
}

// NewScheduleTaskHandler creates a new ScheduleTaskHandler.
func NewScheduleTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, detector *services.ConflictDetector) *ScheduleTaskHandler {
	return &ScheduleTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		detector:   detector,
	}
}

// Handle executes the ScheduleTaskCommand. After the slot is committed,
// conflict flags for the affected day buckets are recomputed so siblings
// never carry stale flags.
func (h *ScheduleTaskHandler) Handle(ctx context.Context, cmd ScheduleTaskCommand) (ScheduleTaskResult, error) {
	startClock, err := slot.ParseClock(cmd.StartClock)
	if err != nil {
		return ScheduleTaskResult{}, err
	}
	endClock, err := slot.ParseClock(cmd.EndClock)
	if err != nil {
		return ScheduleTaskResult{}, err
	}

	start := slot.Build(cmd.Year, cmd.Week, cmd.DayOfWeek, startClock)
	end := slot.Build(cmd.Year, cmd.Week, cmd.DayOfWeek, endClock)
	if !start.Before(end) {
		return ScheduleTaskResult{}, slot.ErrInvalidRange
	}

	var result ScheduleTaskResult
	var oldBucket *bucket

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		if t.Year() != nil {
			oldBucket = &bucket{year: *t.Year(), week: *t.Week(), dayOfWeek: *t.DayOfWeek()}
		}

		taskID := t.ID()
		conflict, err := h.detector.HasConflict(txCtx, cmd.UserID, cmd.Year, cmd.Week, cmd.DayOfWeek, start, end, &taskID)
		if err != nil {
			return err
		}

		if err := t.Schedule(cmd.Year, cmd.Week, cmd.DayOfWeek, start, end); err != nil {
			return err
		}
		t.SetHasConflict(conflict)
		result.HasConflict = conflict

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents())
	})
	if err != nil {
		return ScheduleTaskResult{}, err
	}

	if err := h.refreshBuckets(ctx, cmd, oldBucket); err != nil {
		return result, err
	}
	return result, nil
}

type bucket struct {
	year, week, dayOfWeek int
}

func (h *ScheduleTaskHandler) refreshBuckets(ctx context.Context, cmd ScheduleTaskCommand, old *bucket) error {
	if err := h.detector.RefreshBucket(ctx, cmd.UserID, cmd.Year, cmd.Week, cmd.DayOfWeek); err != nil {
		return err
	}
	if old == nil {
		return nil
	}
	if old.year == cmd.Year && old.week == cmd.Week && old.dayOfWeek == cmd.DayOfWeek {
		return nil
	}
	// The task left this bucket, so its former siblings may have stale flags.
	return h.detector.RefreshBucket(ctx, cmd.UserID, old.year, old.week, old.dayOfWeek)
}
