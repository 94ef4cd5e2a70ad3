package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	"github.com/minhle/planwise/internal/shared/infrastructure/bucketlock"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

func doneTask(t *testing.T, userID uuid.UUID, title string) *task.Task {
	t.Helper()
	tk := ownedTask(t, userID, title)
	require.NoError(t, tk.SetStatus(task.StatusDone))
	tk.ClearDomainEvents()
	return tk
}

func TestCloseWeekHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("derives the completed count from member statuses and locks", func(t *testing.T) {
		planRepo := new(mockPlanRepo)
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCloseWeekHandler(planRepo, taskRepo, outboxRepo, uow, bucketlock.NewNoopLocker())

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		first := doneTask(t, userID, "Shipped")
		second := doneTask(t, userID, "Also shipped")
		third := ownedTask(t, userID, "Slipped")
		memberIDs := []uuid.UUID{first.ID(), second.ID(), third.ID()}
		p := rehydratedPlan(userID, 2026, 7, memberIDs)

		planRepo.On("FindByID", ctx, p.ID()).Return(p, nil)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		planRepo.On("FindByID", txCtx, p.ID()).Return(p, nil)
		taskRepo.On("FindByIDs", txCtx, memberIDs).Return([]*task.Task{first, second, third}, nil)
		planRepo.On("Save", txCtx, p).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		closed, err := handler.Handle(ctx, CloseWeekCommand{UserID: userID, PlanID: p.ID()})

		require.NoError(t, err)
		assert.Equal(t, 2, closed.CompletedTasks())
		assert.Equal(t, 3, closed.TargetTasks())
		assert.True(t, closed.Locked())

		uow.AssertExpectations(t)
		planRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("closing an already closed plan fails", func(t *testing.T) {
		planRepo := new(mockPlanRepo)
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCloseWeekHandler(planRepo, taskRepo, outboxRepo, uow, bucketlock.NewNoopLocker())

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		p := rehydratedPlan(userID, 2026, 7, nil)
		require.NoError(t, p.Close(0))
		p.ClearDomainEvents()

		planRepo.On("FindByID", ctx, p.ID()).Return(p, nil)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		planRepo.On("FindByID", txCtx, p.ID()).Return(p, nil)
		taskRepo.On("FindByIDs", txCtx, ([]uuid.UUID)(nil)).Return([]*task.Task{}, nil)

		_, err := handler.Handle(ctx, CloseWeekCommand{UserID: userID, PlanID: p.ID()})

		assert.ErrorIs(t, err, plan.ErrPlanLocked)
		planRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails fast when the plan lock is held", func(t *testing.T) {
		planRepo := new(mockPlanRepo)
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		locker := bucketlock.NewInMemoryLocker()
		handler := NewCloseWeekHandler(planRepo, taskRepo, outboxRepo, uow, locker)

		ctx := context.Background()
		p := rehydratedPlan(userID, 2026, 7, nil)

		planRepo.On("FindByID", ctx, p.ID()).Return(p, nil)
		_, err := locker.Acquire(ctx, bucketlock.PlanKey(userID, 2026, 7), time.Minute)
		require.NoError(t, err)

		_, err = handler.Handle(ctx, CloseWeekCommand{UserID: userID, PlanID: p.ID()})

		assert.ErrorIs(t, err, bucketlock.ErrLockHeld)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("fails when the plan belongs to another user", func(t *testing.T) {
		planRepo := new(mockPlanRepo)
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCloseWeekHandler(planRepo, taskRepo, outboxRepo, uow, bucketlock.NewNoopLocker())

		ctx := context.Background()
		p := rehydratedPlan(uuid.New(), 2026, 7, nil)

		planRepo.On("FindByID", ctx, p.ID()).Return(p, nil)

		_, err := handler.Handle(ctx, CloseWeekCommand{UserID: userID, PlanID: p.ID()})

		assert.ErrorIs(t, err, plan.ErrPlanNotFound)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})
}
