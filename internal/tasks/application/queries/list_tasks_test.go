package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/tasks/domain/category"
	"github.com/minhle/planwise/internal/tasks/domain/task"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByUserID(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindScheduled(ctx context.Context, userID uuid.UUID, year, week, dayOfWeek int, excludeID *uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID, year, week, dayOfWeek, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindDueForPlan(ctx context.Context, userID uuid.UUID, dueBy time.Time, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, userID, dueBy, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindForRecalc(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

// mockCategoryRepo is a mock implementation of category.Repository.
type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) Save(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *mockCategoryRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *mockCategoryRepo) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

func newTask(t *testing.T, userID uuid.UUID, title string, mutate func(*task.Task)) *task.Task {
	t.Helper()
	tk, err := task.NewTask(userID, title)
	require.NoError(t, err)
	if mutate != nil {
		mutate(tk)
	}
	tk.ClearDomainEvents()
	return tk
}

func TestListTasksHandler_Handle(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("lists active tasks sorted by score", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewListTasksHandler(taskRepo, nil)

		due := time.Now().Add(-48 * time.Hour)
		urgent := newTask(t, userID, "Pay invoice", func(tk *task.Task) {
			require.NoError(t, tk.SetDueDate(&due))
			tk.ApplyScore(55, value_objects.PriorityUrgent, time.Now())
		})
		low := newTask(t, userID, "Tidy desk", func(tk *task.Task) {
			tk.ApplyScore(5, value_objects.PriorityLow, time.Now())
		})

		taskRepo.On("FindByUserID", ctx, userID, task.Filter{}).
			Return([]*task.Task{low, urgent}, nil)

		result, err := handler.Handle(ctx, ListTasksQuery{UserID: userID})

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "Pay invoice", result[0].Title)
		assert.Equal(t, 55, result[0].PriorityScore)
		assert.Equal(t, "Tidy desk", result[1].Title)
		taskRepo.AssertExpectations(t)
	})

	t.Run("status filter is passed to the repository", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewListTasksHandler(taskRepo, nil)

		done := task.StatusDone
		taskRepo.On("FindByUserID", ctx, userID, task.Filter{Status: &done}).
			Return([]*task.Task{}, nil)

		result, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Status: "done"})

		require.NoError(t, err)
		assert.Empty(t, result)
		taskRepo.AssertExpectations(t)
	})

	t.Run("asking for archived implies including them", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewListTasksHandler(taskRepo, nil)

		archived := task.StatusArchived
		taskRepo.On("FindByUserID", ctx, userID, task.Filter{Status: &archived, IncludeArchived: true}).
			Return([]*task.Task{}, nil)

		_, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Status: "archived"})

		require.NoError(t, err)
		taskRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewListTasksHandler(taskRepo, nil)

		_, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Status: "finished"})

		assert.ErrorIs(t, err, task.ErrInvalidStatus)
	})

	t.Run("overdue filter excludes done tasks", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewListTasksHandler(taskRepo, nil)

		pastDue := time.Now().Add(-72 * time.Hour)
		open := newTask(t, userID, "Late report", func(tk *task.Task) {
			require.NoError(t, tk.SetDueDate(&pastDue))
		})
		finished := newTask(t, userID, "Late but done", func(tk *task.Task) {
			require.NoError(t, tk.SetDueDate(&pastDue))
			require.NoError(t, tk.SetStatus(task.StatusDone))
		})
		undated := newTask(t, userID, "No deadline", nil)

		taskRepo.On("FindByUserID", ctx, userID, task.Filter{}).
			Return([]*task.Task{open, finished, undated}, nil)

		result, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Overdue: true})

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Late report", result[0].Title)
	})

	t.Run("limit truncates the result", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewListTasksHandler(taskRepo, nil)

		tasks := []*task.Task{
			newTask(t, userID, "a", nil),
			newTask(t, userID, "b", nil),
			newTask(t, userID, "c", nil),
		}
		taskRepo.On("FindByUserID", ctx, userID, task.Filter{}).Return(tasks, nil)

		result, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Limit: 2})

		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("resolves category names", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		categoryRepo := new(mockCategoryRepo)
		handler := NewListTasksHandler(taskRepo, categoryRepo)

		categoryID := uuid.New()
		tk := newTask(t, userID, "Plan sprint", func(tk *task.Task) {
			require.NoError(t, tk.SetCategory(&categoryID))
		})

		taskRepo.On("FindByUserID", ctx, userID, task.Filter{}).Return([]*task.Task{tk}, nil)
		categoryRepo.On("ResolveNames", ctx, []uuid.UUID{categoryID}).
			Return(map[uuid.UUID]string{categoryID: "Work"}, nil)

		result, err := handler.Handle(ctx, ListTasksQuery{UserID: userID})

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Work", result[0].CategoryName)
		categoryRepo.AssertExpectations(t)
	})
}
