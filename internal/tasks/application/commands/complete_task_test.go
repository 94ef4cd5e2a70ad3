package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/tasks/domain/task"
)

func TestCompleteTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("successfully completes task", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCompleteTaskHandler(taskRepo, outboxRepo, uow)

		tk := existingTask(t, userID, "Submit tax return")

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		err := handler.Handle(ctx, CompleteTaskCommand{UserID: userID, TaskID: tk.ID()})

		require.NoError(t, err)
		assert.Equal(t, task.StatusDone, tk.Status())
		assert.NotNil(t, tk.CompletedAt())
		assert.Equal(t, 0, tk.PriorityScore())

		uow.AssertExpectations(t)
		taskRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("completing twice is a no-op", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCompleteTaskHandler(taskRepo, outboxRepo, uow)

		tk := existingTask(t, userID, "Water plants")
		require.NoError(t, tk.SetStatus(task.StatusDone))
		firstCompletedAt := tk.CompletedAt()
		tk.ClearDomainEvents()

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)

		err := handler.Handle(ctx, CompleteTaskCommand{UserID: userID, TaskID: tk.ID()})

		require.NoError(t, err)
		assert.Equal(t, firstCompletedAt, tk.CompletedAt())
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("not owned looks like not found", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCompleteTaskHandler(taskRepo, outboxRepo, uow)

		tk := existingTask(t, uuid.New(), "not yours")

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)

		err := handler.Handle(ctx, CompleteTaskCommand{UserID: userID, TaskID: tk.ID()})

		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})

	t.Run("fails when unit of work begin fails", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCompleteTaskHandler(taskRepo, outboxRepo, uow)

		ctx := context.Background()
		uow.On("Begin", ctx).Return(ctx, errors.New("connection error"))

		err := handler.Handle(ctx, CompleteTaskCommand{UserID: userID, TaskID: uuid.New()})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection error")
	})
}

func TestArchiveTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("successfully archives task", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewArchiveTaskHandler(taskRepo, outboxRepo, uow)

		tk := existingTask(t, userID, "Old project notes")

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		err := handler.Handle(ctx, ArchiveTaskCommand{UserID: userID, TaskID: tk.ID()})

		require.NoError(t, err)
		assert.Equal(t, task.StatusArchived, tk.Status())
		uow.AssertExpectations(t)
	})

	t.Run("archiving a done task clears completion timestamp", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewArchiveTaskHandler(taskRepo, outboxRepo, uow)

		tk := existingTask(t, userID, "Finished report")
		require.NoError(t, tk.SetStatus(task.StatusDone))
		tk.ClearDomainEvents()

		ctx := context.Background()
		txCtx := testTxContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		err := handler.Handle(ctx, ArchiveTaskCommand{UserID: userID, TaskID: tk.ID()})

		require.NoError(t, err)
		assert.Equal(t, task.StatusArchived, tk.Status())
		assert.Nil(t, tk.CompletedAt())
	})
}
