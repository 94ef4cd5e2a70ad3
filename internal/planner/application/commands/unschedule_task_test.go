package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/planner/application/services"
	"github.com/minhle/planwise/internal/shared/infrastructure/bucketlock"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

func TestUnscheduleTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("clears the slot and refreshes the old bucket", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		detector := services.NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())
		handler := NewUnscheduleTaskHandler(taskRepo, outboxRepo, uow, detector)

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		tk := ownedTask(t, userID, "Deep work")
		require.NoError(t, tk.Schedule(2026, 10, 1,
			slotTime(t, 2026, 10, 1, "09:00"), slotTime(t, 2026, 10, 1, "10:00")))
		tk.SetHasConflict(true)
		tk.ClearDomainEvents()

		sibling := ownedTask(t, userID, "Standup")
		require.NoError(t, sibling.Schedule(2026, 10, 1,
			slotTime(t, 2026, 10, 1, "09:30"), slotTime(t, 2026, 10, 1, "10:30")))
		sibling.SetHasConflict(true)
		sibling.ClearDomainEvents()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).Return([]*task.Task{sibling}, nil)
		taskRepo.On("Save", ctx, sibling).Return(nil)

		err := handler.Handle(ctx, UnscheduleTaskCommand{UserID: userID, TaskID: tk.ID()})

		require.NoError(t, err)
		assert.Nil(t, tk.StartTime())
		assert.Nil(t, tk.Year())
		assert.False(t, tk.HasConflict())
		assert.False(t, sibling.HasConflict())

		uow.AssertExpectations(t)
		taskRepo.AssertExpectations(t)
	})

	t.Run("unscheduling an unscheduled task is a no-op", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		detector := services.NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())
		handler := NewUnscheduleTaskHandler(taskRepo, outboxRepo, uow, detector)

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		tk := ownedTask(t, userID, "Deep work")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)

		err := handler.Handle(ctx, UnscheduleTaskCommand{UserID: userID, TaskID: tk.ID()})

		require.NoError(t, err)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		taskRepo.AssertNotCalled(t, "FindScheduled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("fails when task belongs to another user", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		detector := services.NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())
		handler := NewUnscheduleTaskHandler(taskRepo, outboxRepo, uow, detector)

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		other := ownedTask(t, uuid.New(), "Someone else's task")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, other.ID()).Return(other, nil)

		err := handler.Handle(ctx, UnscheduleTaskCommand{UserID: userID, TaskID: other.ID()})

		assert.ErrorIs(t, err, task.ErrTaskNotFound)
		uow.AssertExpectations(t)
	})
}
