// Package persistence implements the planner context repositories for both
// supported database drivers.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	"github.com/minhle/planwise/internal/shared/infrastructure/database"
)

// ErrOptimisticLocking is returned when a save conflicts with a concurrent
// update of the same plan.
var ErrOptimisticLocking = errors.New("optimistic locking conflict")

const pgPlanColumns = `
	id, user_id, year, week, locked, target_tasks, completed_tasks,
	notes, version, created_at, updated_at`

// PostgresPlanRepository implements plan.Repository using PostgreSQL.
// Membership lives in weekly_plan_tasks and is rewritten on every save, so
// callers are expected to run Save inside the ambient transaction.
type PostgresPlanRepository struct {
	conn database.Connection
}

// NewPostgresPlanRepository creates a new PostgreSQL plan repository.
func NewPostgresPlanRepository(conn database.Connection) *PostgresPlanRepository {
	return &PostgresPlanRepository{conn: conn}
}

// Save upserts a plan with optimistic locking on the version column, then
// rewrites its membership rows.
func (r *PostgresPlanRepository) Save(ctx context.Context, p *plan.WeeklyPlan) error {
	query := `
		INSERT INTO weekly_plans (
			id, user_id, year, week, locked, target_tasks, completed_tasks,
			notes, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			locked = EXCLUDED.locked,
			target_tasks = EXCLUDED.target_tasks,
			completed_tasks = EXCLUDED.completed_tasks,
			notes = EXCLUDED.notes,
			version = weekly_plans.version + 1,
			updated_at = NOW()
		WHERE weekly_plans.version = $9
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		p.ID(),
		p.UserID(),
		p.Year(),
		p.Week(),
		p.Locked(),
		p.TargetTasks(),
		p.CompletedTasks(),
		p.Notes(),
		p.Version(),
		p.CreatedAt(),
		p.UpdatedAt(),
	).Scan(&newVersion)
	if err != nil {
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		if database.IsUniqueViolation(err) {
			return plan.ErrDuplicatePlan
		}
		return fmt.Errorf("failed to save plan: %w", err)
	}

	return r.replaceMembers(ctx, exec, p)
}

func (r *PostgresPlanRepository) replaceMembers(ctx context.Context, exec database.Executor, p *plan.WeeklyPlan) error {
	if _, err := exec.Exec(ctx, `DELETE FROM weekly_plan_tasks WHERE plan_id = $1`, p.ID()); err != nil {
		return fmt.Errorf("failed to clear plan members: %w", err)
	}

	query := `INSERT INTO weekly_plan_tasks (plan_id, task_id, position, added_at) VALUES ($1, $2, $3, $4)`
	for i, taskID := range p.TaskIDs() {
		if _, err := exec.Exec(ctx, query, p.ID(), taskID, i, p.UpdatedAt()); err != nil {
			return fmt.Errorf("failed to save plan member: %w", err)
		}
	}
	return nil
}

// FindByID retrieves a plan by its ID.
func (r *PostgresPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.WeeklyPlan, error) {
	query := `SELECT` + pgPlanColumns + ` FROM weekly_plans WHERE id = $1`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scanPlan(ctx, exec, exec.QueryRow(ctx, query, id))
}

// FindByKey retrieves the plan for an (owner, year, week) key.
func (r *PostgresPlanRepository) FindByKey(ctx context.Context, userID uuid.UUID, year, week int) (*plan.WeeklyPlan, error) {
	query := `SELECT` + pgPlanColumns + ` FROM weekly_plans WHERE user_id = $1 AND year = $2 AND week = $3`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scanPlan(ctx, exec, exec.QueryRow(ctx, query, userID, year, week))
}

func (r *PostgresPlanRepository) scanPlan(ctx context.Context, exec database.Executor, row database.Row) (*plan.WeeklyPlan, error) {
	var s plan.State
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Year,
		&s.Week,
		&s.Locked,
		&s.TargetTasks,
		&s.CompletedTasks,
		&s.Notes,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	s.TaskIDs, err = r.memberIDs(ctx, exec, s.ID)
	if err != nil {
		return nil, err
	}
	return plan.Rehydrate(s), nil
}

func (r *PostgresPlanRepository) memberIDs(ctx context.Context, exec database.Executor, planID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := exec.Query(ctx, `SELECT task_id FROM weekly_plan_tasks WHERE plan_id = $1 ORDER BY position`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to find plan members: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan plan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
