package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable.
var ErrTaskNotFound = errors.New("task not found")

// Filter narrows task listings. The default listing excludes archived and
// deleted tasks.
type Filter struct {
	Status          *Status
	IncludeArchived bool
	IncludeDeleted  bool
}

// Repository defines persistence for tasks.
type Repository interface {
	// Save upserts a task with optimistic locking on the version column.
	Save(ctx context.Context, t *Task) error

	// FindByID retrieves a task by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindByIDs retrieves multiple tasks by ID, skipping missing ones.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Task, error)

	// FindByUserID retrieves a user's tasks matching the filter.
	FindByUserID(ctx context.Context, userID uuid.UUID, filter Filter) ([]*Task, error)

	// FindScheduled retrieves a user's non-deleted tasks occupying the
	// given day bucket, optionally excluding one task.
	FindScheduled(ctx context.Context, userID uuid.UUID, year, week, dayOfWeek int, excludeID *uuid.UUID) ([]*Task, error)

	// FindDueForPlan retrieves up to limit non-done, non-deleted tasks
	// with dueDate <= dueBy, ordered by priority score descending.
	FindDueForPlan(ctx context.Context, userID uuid.UUID, dueBy time.Time, limit int) ([]*Task, error)

	// FindForRecalc retrieves open tasks (not done, archived or
	// deleted) for the bulk priority recompute sweep.
	FindForRecalc(ctx context.Context) ([]*Task, error)
}
