// Package services contains the planner's domain services.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/slot"
	"github.com/minhle/planwise/internal/shared/infrastructure/bucketlock"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

// bucketLockTTL bounds how long a crashed holder can stall a day bucket.
const bucketLockTTL = 10 * time.Second

// ConflictDetector decides whether scheduled tasks overlap within a day
// bucket and keeps every sibling's conflict flag current.
type ConflictDetector struct {
	taskRepo task.Repository
	locker   bucketlock.Locker
}

// NewConflictDetector creates a new ConflictDetector.
func NewConflictDetector(taskRepo task.Repository, locker bucketlock.Locker) *ConflictDetector {
	if locker == nil {
		locker = bucketlock.NewNoopLocker()
	}
	return &ConflictDetector{taskRepo: taskRepo, locker: locker}
}

// HasConflict reports whether the proposed interval overlaps any of the
// owner's other scheduled tasks in the same (year, week, day) bucket.
// Intervals are half-open: touching endpoints do not conflict.
func (d *ConflictDetector) HasConflict(ctx context.Context, userID uuid.UUID, year, week, dayOfWeek int, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	if !start.Before(end) {
		return false, slot.ErrInvalidRange
	}

	siblings, err := d.taskRepo.FindScheduled(ctx, userID, year, week, dayOfWeek, excludeID)
	if err != nil {
		return false, err
	}

	for _, sibling := range siblings {
		if slot.Overlaps(start, end, *sibling.StartTime(), *sibling.EndTime()) {
			return true, nil
		}
	}
	return false, nil
}

// RefreshBucket recomputes the conflict flag for every scheduled task in
// the bucket and saves the ones that changed. Serialized by the bucket
// lock so concurrent writers to the same day cannot leave stale flags.
func (d *ConflictDetector) RefreshBucket(ctx context.Context, userID uuid.UUID, year, week, dayOfWeek int) error {
	lock, err := d.locker.Acquire(ctx, bucketlock.DayBucketKey(userID, year, week, dayOfWeek), bucketLockTTL)
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	tasks, err := d.taskRepo.FindScheduled(ctx, userID, year, week, dayOfWeek, nil)
	if err != nil {
		return err
	}

	for i, t := range tasks {
		conflict := false
		for j, sibling := range tasks {
			if i == j {
				continue
			}
			if slot.Overlaps(*t.StartTime(), *t.EndTime(), *sibling.StartTime(), *sibling.EndTime()) {
				conflict = true
				break
			}
		}
		if conflict == t.HasConflict() {
			continue
		}
		t.SetHasConflict(conflict)
		if err := d.taskRepo.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
