package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/planner/domain/slot"
	"github.com/minhle/planwise/internal/shared/infrastructure/bucketlock"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

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

// scheduledTask creates a task occupying the given clock range on day 1
// of week 10, 2026.
func scheduledTask(t *testing.T, userID uuid.UUID, title, startClock, endClock string) *task.Task {
	t.Helper()

	tk, err := task.NewTask(userID, title)
	require.NoError(t, err)

	sc, err := slot.ParseClock(startClock)
	require.NoError(t, err)
	ec, err := slot.ParseClock(endClock)
	require.NoError(t, err)

	start := slot.Build(2026, 10, 1, sc)
	end := slot.Build(2026, 10, 1, ec)
	require.NoError(t, tk.Schedule(2026, 10, 1, start, end))
	tk.ClearDomainEvents()
	return tk
}

func TestConflictDetector_HasConflict(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	at := func(clock string) time.Time {
		c, err := slot.ParseClock(clock)
		require.NoError(t, err)
		return slot.Build(2026, 10, 1, c)
	}

	t.Run("detects overlap with an existing slot", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		existing := scheduledTask(t, userID, "Standup", "09:00", "10:00")
		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{existing}, nil)

		conflict, err := detector.HasConflict(ctx, userID, 2026, 10, 1, at("09:30"), at("10:30"), nil)
		require.NoError(t, err)
		assert.True(t, conflict)
	})

	t.Run("touching slots do not conflict", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		existing := scheduledTask(t, userID, "Standup", "09:00", "10:00")
		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{existing}, nil)

		conflict, err := detector.HasConflict(ctx, userID, 2026, 10, 1, at("10:00"), at("11:00"), nil)
		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("empty bucket never conflicts", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{}, nil)

		conflict, err := detector.HasConflict(ctx, userID, 2026, 10, 1, at("09:00"), at("10:00"), nil)
		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("excluded task is not compared against itself", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		existing := scheduledTask(t, userID, "Standup", "09:00", "10:00")
		excludeID := existing.ID()
		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, &excludeID).
			Return([]*task.Task{}, nil)

		conflict, err := detector.HasConflict(ctx, userID, 2026, 10, 1, at("09:00"), at("10:00"), &excludeID)
		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("rejects inverted range before querying", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		_, err := detector.HasConflict(ctx, userID, 2026, 10, 1, at("11:00"), at("10:00"), nil)
		assert.ErrorIs(t, err, slot.ErrInvalidRange)
		taskRepo.AssertNotCalled(t, "FindScheduled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return(nil, errors.New("connection refused"))

		_, err := detector.HasConflict(ctx, userID, 2026, 10, 1, at("09:00"), at("10:00"), nil)
		assert.Error(t, err)
	})
}

func TestConflictDetector_RefreshBucket(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("flags every overlapping member and saves only changes", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		a := scheduledTask(t, userID, "Deep work", "09:00", "11:00")
		b := scheduledTask(t, userID, "Standup", "10:30", "11:00")
		c := scheduledTask(t, userID, "Lunch", "12:00", "13:00")

		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{a, b, c}, nil)
		taskRepo.On("Save", ctx, a).Return(nil)
		taskRepo.On("Save", ctx, b).Return(nil)

		require.NoError(t, detector.RefreshBucket(ctx, userID, 2026, 10, 1))

		assert.True(t, a.HasConflict())
		assert.True(t, b.HasConflict())
		assert.False(t, c.HasConflict())
		taskRepo.AssertNotCalled(t, "Save", ctx, c)
	})

	t.Run("clears stale flags when the overlap is gone", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		a := scheduledTask(t, userID, "Deep work", "09:00", "10:00")
		a.SetHasConflict(true)

		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{a}, nil)
		taskRepo.On("Save", ctx, a).Return(nil)

		require.NoError(t, detector.RefreshBucket(ctx, userID, 2026, 10, 1))
		assert.False(t, a.HasConflict())
	})

	t.Run("no saves when nothing changed", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		detector := NewConflictDetector(taskRepo, bucketlock.NewNoopLocker())

		a := scheduledTask(t, userID, "Deep work", "09:00", "10:00")

		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{a}, nil)

		require.NoError(t, detector.RefreshBucket(ctx, userID, 2026, 10, 1))
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails fast when the bucket lock is held", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		locker := bucketlock.NewInMemoryLocker()
		detector := NewConflictDetector(taskRepo, locker)

		_, err := locker.Acquire(ctx, bucketlock.DayBucketKey(userID, 2026, 10, 1), time.Minute)
		require.NoError(t, err)

		err = detector.RefreshBucket(ctx, userID, 2026, 10, 1)
		assert.ErrorIs(t, err, bucketlock.ErrLockHeld)
		taskRepo.AssertNotCalled(t, "FindScheduled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("releases the lock on completion", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		locker := bucketlock.NewInMemoryLocker()
		detector := NewConflictDetector(taskRepo, locker)

		taskRepo.On("FindScheduled", ctx, userID, 2026, 10, 1, (*uuid.UUID)(nil)).
			Return([]*task.Task{}, nil)

		require.NoError(t, detector.RefreshBucket(ctx, userID, 2026, 10, 1))

		lock, err := locker.Acquire(ctx, bucketlock.DayBucketKey(userID, 2026, 10, 1), time.Minute)
		require.NoError(t, err)
		require.NoError(t, lock.Release(ctx))
	})
}
