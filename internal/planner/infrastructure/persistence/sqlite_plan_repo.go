package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	"github.com/minhle/planwise/internal/shared/infrastructure/database"
)

const sqlitePlanColumns = `
	id, user_id, year, week, locked, target_tasks, completed_tasks,
	notes, version, created_at, updated_at`

// SQLitePlanRepository implements plan.Repository using SQLite. Timestamps
// are stored as RFC3339 text.
type SQLitePlanRepository struct {
	conn database.Connection
}

// NewSQLitePlanRepository creates a new SQLite plan repository.
func NewSQLitePlanRepository(conn database.Connection) *SQLitePlanRepository {
	return &SQLitePlanRepository{conn: conn}
}

// Save upserts a plan with optimistic locking on the version column, then
// rewrites its membership rows.
func (r *SQLitePlanRepository) Save(ctx context.Context, p *plan.WeeklyPlan) error {
	query := `
		INSERT INTO weekly_plans (
			id, user_id, year, week, locked, target_tasks, completed_tasks,
			notes, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			locked = excluded.locked,
			target_tasks = excluded.target_tasks,
			completed_tasks = excluded.completed_tasks,
			notes = excluded.notes,
			version = weekly_plans.version + 1,
			updated_at = excluded.updated_at
		WHERE weekly_plans.version = ?
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		p.ID().String(),
		p.UserID().String(),
		p.Year(),
		p.Week(),
		p.Locked(),
		p.TargetTasks(),
		p.CompletedTasks(),
		p.Notes(),
		p.Version(),
		p.CreatedAt().UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		p.Version(),
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

func (r *SQLitePlanRepository) replaceMembers(ctx context.Context, exec database.Executor, p *plan.WeeklyPlan) error {
	if _, err := exec.Exec(ctx, `DELETE FROM weekly_plan_tasks WHERE plan_id = ?`, p.ID().String()); err != nil {
		return fmt.Errorf("failed to clear plan members: %w", err)
	}

	query := `INSERT INTO weekly_plan_tasks (plan_id, task_id, position, added_at) VALUES (?, ?, ?, ?)`
	addedAt := time.Now().UTC().Format(time.RFC3339)
	for i, taskID := range p.TaskIDs() {
		if _, err := exec.Exec(ctx, query, p.ID().String(), taskID.String(), i, addedAt); err != nil {
			return fmt.Errorf("failed to save plan member: %w", err)
		}
	}
	return nil
}

// FindByID retrieves a plan by its ID.
func (r *SQLitePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.WeeklyPlan, error) {
	query := `SELECT` + sqlitePlanColumns + ` FROM weekly_plans WHERE id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scanPlan(ctx, exec, exec.QueryRow(ctx, query, id.String()))
}

// FindByKey retrieves the plan for an (owner, year, week) key.
func (r *SQLitePlanRepository) FindByKey(ctx context.Context, userID uuid.UUID, year, week int) (*plan.WeeklyPlan, error) {
	query := `SELECT` + sqlitePlanColumns + ` FROM weekly_plans WHERE user_id = ? AND year = ? AND week = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.scanPlan(ctx, exec, exec.QueryRow(ctx, query, userID.String(), year, week))
}

func (r *SQLitePlanRepository) scanPlan(ctx context.Context, exec database.Executor, row database.Row) (*plan.WeeklyPlan, error) {
	var (
		s                  plan.State
		id, userID         string
		createdAt, updated string
	)
	err := row.Scan(
		&id,
		&userID,
		&s.Year,
		&s.Week,
		&s.Locked,
		&s.TargetTasks,
		&s.CompletedTasks,
		&s.Notes,
		&s.Version,
		&createdAt,
		&updated,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	s.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan id: %w", err)
	}
	s.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan owner: %w", err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updated)

	s.TaskIDs, err = r.memberIDs(ctx, exec, s.ID)
	if err != nil {
		return nil, err
	}
	return plan.Rehydrate(s), nil
}

func (r *SQLitePlanRepository) memberIDs(ctx context.Context, exec database.Executor, planID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := exec.Query(ctx, `SELECT task_id FROM weekly_plan_tasks WHERE plan_id = ? ORDER BY position`, planID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to find plan members: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan plan member: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse plan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
