package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/tasks/domain/task"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

func existingTask(t *testing.T, userID uuid.UUID, title string) *task.Task {
	t.Helper()
	tk, err := task.NewTask(userID, title)
	require.NoError(t, err)
	tk.ClearDomainEvents()
	return tk
}

func TestUpdateTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	setup := func(tk *task.Task) (*UpdateTaskHandler, *mockTaskRepo, *mockOutboxRepo, *mockUnitOfWork, context.Context, context.Context) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, fixedEngine(), uow)

		ctx := context.Background()
		txCtx := testTxContext(ctx)
		uow.On("Begin", ctx).Return(txCtx, nil)
		taskRepo.On("FindByID", txCtx, tk.ID()).Return(tk, nil)
		return handler, taskRepo, outboxRepo, uow, ctx, txCtx
	}

	t.Run("applies allow-listed fields", func(t *testing.T) {
		tk := existingTask(t, userID, "Old title")
		handler, taskRepo, outboxRepo, uow, ctx, txCtx := setup(tk)

		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID: userID,
			TaskID: tk.ID(),
			Changes: map[string]any{
				FieldTitle:       "New title",
				FieldDescription: "detail",
			},
		})

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{FieldTitle, FieldDescription}, result.AppliedFields)
		assert.Equal(t, "New title", tk.Title())
		assert.Equal(t, "detail", tk.Description())
		taskRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("silently ignores unknown fields", func(t *testing.T) {
		tk := existingTask(t, userID, "Keep me")
		handler, taskRepo, outboxRepo, uow, ctx, txCtx := setup(tk)

		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID: userID,
			TaskID: tk.ID(),
			Changes: map[string]any{
				"priorityScore": 9000,
				"isDeleted":     true,
			},
		})

		require.NoError(t, err)
		assert.Empty(t, result.AppliedFields)
		assert.Equal(t, "Keep me", tk.Title())
		assert.Equal(t, 0, tk.PriorityScore())
	})

	t.Run("status change triggers rescore", func(t *testing.T) {
		tk := existingTask(t, userID, "Ship release notes")
		handler, taskRepo, outboxRepo, uow, ctx, txCtx := setup(tk)

		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  tk.ID(),
			Changes: map[string]any{FieldStatus: "in_progress"},
		})

		require.NoError(t, err)
		assert.Equal(t, task.StatusInProgress, tk.Status())
		assert.Equal(t, 10, result.PriorityScore)
		assert.NotNil(t, tk.LastPriorityCalcAt())
	})

	t.Run("due date change triggers rescore", func(t *testing.T) {
		tk := existingTask(t, userID, "Book flights")
		handler, taskRepo, outboxRepo, uow, ctx, txCtx := setup(tk)

		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		due := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) // same day as clock
		result, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  tk.ID(),
			Changes: map[string]any{FieldDueDate: &due},
		})

		require.NoError(t, err)
		assert.Equal(t, 45, result.PriorityScore)
		assert.Equal(t, "urgent", result.Priority)
	})

	t.Run("applies a manual priority override without rescoring", func(t *testing.T) {
		tk := existingTask(t, userID, "Water the plants")
		handler, taskRepo, outboxRepo, uow, ctx, txCtx := setup(tk)

		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  tk.ID(),
			Changes: map[string]any{FieldPriority: "urgent"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{FieldPriority}, result.AppliedFields)
		assert.Equal(t, "urgent", result.Priority)
		assert.Equal(t, value_objects.PriorityUrgent, tk.Priority())
		assert.Equal(t, 0, tk.PriorityScore())
		assert.Nil(t, tk.LastPriorityCalcAt())
	})

	t.Run("rejects invalid priority value", func(t *testing.T) {
		tk := existingTask(t, userID, "x")
		handler, _, _, uow, ctx, txCtx := setup(tk)

		uow.On("Rollback", txCtx).Return(nil)

		_, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  tk.ID(),
			Changes: map[string]any{FieldPriority: "critical"},
		})

		assert.ErrorIs(t, err, value_objects.ErrInvalidPriority)
	})

	t.Run("archiving applies after the other fields", func(t *testing.T) {
		tk := existingTask(t, userID, "Wrap up")
		handler, taskRepo, outboxRepo, uow, ctx, txCtx := setup(tk)

		uow.On("Commit", txCtx).Return(nil)
		taskRepo.On("Save", txCtx, tk).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID: userID,
			TaskID: tk.ID(),
			Changes: map[string]any{
				FieldStatus: "archived",
				FieldTitle:  "Wrapped up",
			},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{FieldTitle, FieldStatus}, result.AppliedFields)
		assert.Equal(t, "Wrapped up", tk.Title())
		assert.Equal(t, task.StatusArchived, tk.Status())
	})

	t.Run("rejects invalid status value", func(t *testing.T) {
		tk := existingTask(t, userID, "x")
		handler, _, _, uow, ctx, txCtx := setup(tk)

		uow.On("Rollback", txCtx).Return(nil)

		_, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  tk.ID(),
			Changes: map[string]any{FieldStatus: "finished"},
		})

		assert.ErrorIs(t, err, task.ErrInvalidStatus)
	})

	t.Run("not owned looks like not found", func(t *testing.T) {
		tk := existingTask(t, uuid.New(), "someone else's")
		handler, _, _, uow, ctx, txCtx := setup(tk)

		uow.On("Rollback", txCtx).Return(nil)

		_, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  tk.ID(),
			Changes: map[string]any{FieldTitle: "mine now"},
		})

		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})

	t.Run("fails when task not found", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewUpdateTaskHandler(taskRepo, outboxRepo, fixedEngine(), uow)

		ctx := context.Background()
		txCtx := testTxContext(ctx)
		missing := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		taskRepo.On("FindByID", txCtx, missing).Return(nil, task.ErrTaskNotFound)

		_, err := handler.Handle(ctx, UpdateTaskCommand{
			UserID:  userID,
			TaskID:  missing,
			Changes: map[string]any{FieldTitle: "anything"},
		})

		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}
