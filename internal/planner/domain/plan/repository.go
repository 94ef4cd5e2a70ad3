package plan

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPlanNotFound is returned when a plan does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable.
var ErrPlanNotFound = errors.New("weekly plan not found")

// ErrDuplicatePlan is returned when a plan already exists for the
// (owner, year, week) key.
var ErrDuplicatePlan = errors.New("weekly plan already exists for this week")

// Repository defines persistence for weekly plans.
type Repository interface {
	// Save upserts a plan and its membership rows. A unique-key violation
	// on (owner, year, week) surfaces as ErrDuplicatePlan.
	Save(ctx context.Context, p *WeeklyPlan) error

	// FindByID retrieves a plan by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*WeeklyPlan, error)

	// FindByKey retrieves the plan for an (owner, year, week) key.
	FindByKey(ctx context.Context, userID uuid.UUID, year, week int) (*WeeklyPlan, error)
}
