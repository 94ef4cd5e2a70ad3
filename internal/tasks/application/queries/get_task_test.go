package queries

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/tasks/domain/task"
)

func TestGetTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("successfully returns task", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewGetTaskHandler(taskRepo, nil)

		tk := newTask(t, userID, "Review pull request", nil)
		taskRepo.On("FindByID", ctx, tk.ID()).Return(tk, nil)

		result, err := handler.Handle(ctx, GetTaskQuery{TaskID: tk.ID(), UserID: userID})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "Review pull request", result.Title)
		assert.Equal(t, "todo", result.Status)
		taskRepo.AssertExpectations(t)
	})

	t.Run("resolves category name", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		categoryRepo := new(mockCategoryRepo)
		handler := NewGetTaskHandler(taskRepo, categoryRepo)

		categoryID := uuid.New()
		tk := newTask(t, userID, "Buy groceries", func(tk *task.Task) {
			require.NoError(t, tk.SetCategory(&categoryID))
		})

		taskRepo.On("FindByID", ctx, tk.ID()).Return(tk, nil)
		categoryRepo.On("ResolveNames", ctx, []uuid.UUID{categoryID}).
			Return(map[uuid.UUID]string{categoryID: "Errands"}, nil)

		result, err := handler.Handle(ctx, GetTaskQuery{TaskID: tk.ID(), UserID: userID})

		require.NoError(t, err)
		assert.Equal(t, "Errands", result.CategoryName)
	})

	t.Run("not owned looks like not found", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewGetTaskHandler(taskRepo, nil)

		tk := newTask(t, uuid.New(), "someone else's", nil)
		taskRepo.On("FindByID", ctx, tk.ID()).Return(tk, nil)

		_, err := handler.Handle(ctx, GetTaskQuery{TaskID: tk.ID(), UserID: userID})

		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})

	t.Run("propagates not found from the repository", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewGetTaskHandler(taskRepo, nil)

		missing := uuid.New()
		taskRepo.On("FindByID", ctx, missing).Return(nil, task.ErrTaskNotFound)

		_, err := handler.Handle(ctx, GetTaskQuery{TaskID: missing, UserID: userID})

		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}
