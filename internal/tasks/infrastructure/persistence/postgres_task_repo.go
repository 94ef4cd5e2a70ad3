// Package persistence implements the tasks context repositories for both
// supported database drivers.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/minhle/planwise/internal/shared/infrastructure/database"
	"github.com/minhle/planwise/internal/tasks/domain/task"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

// ErrOptimisticLocking is returned when a save conflicts with a concurrent
// update of the same task.
var ErrOptimisticLocking = errors.New("optimistic locking conflict")

const pgTaskColumns = `
	id, user_id, title, description, status, start_date, due_date,
	start_time, end_time, year, week, day_of_week, has_conflict,
	priority_score, priority, last_priority_calc_at,
	estimated_minutes, actual_minutes, energy_level, focus_level,
	category_id, tags, completed_at, is_deleted, version, created_at, updated_at`

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	conn database.Connection
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

// Save upserts a task with optimistic locking on the version column.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, status, start_date, due_date,
			start_time, end_time, year, week, day_of_week, has_conflict,
			priority_score, priority, last_priority_calc_at,
			estimated_minutes, actual_minutes, energy_level, focus_level,
			category_id, tags, completed_at, is_deleted, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			start_date = EXCLUDED.start_date,
			due_date = EXCLUDED.due_date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			year = EXCLUDED.year,
			week = EXCLUDED.week,
			day_of_week = EXCLUDED.day_of_week,
			has_conflict = EXCLUDED.has_conflict,
			priority_score = EXCLUDED.priority_score,
			priority = EXCLUDED.priority,
			last_priority_calc_at = EXCLUDED.last_priority_calc_at,
			estimated_minutes = EXCLUDED.estimated_minutes,
			actual_minutes = EXCLUDED.actual_minutes,
			energy_level = EXCLUDED.energy_level,
			focus_level = EXCLUDED.focus_level,
			category_id = EXCLUDED.category_id,
			tags = EXCLUDED.tags,
			completed_at = EXCLUDED.completed_at,
			is_deleted = EXCLUDED.is_deleted,
			version = tasks.version + 1,
			updated_at = NOW()
		WHERE tasks.version = $25
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		t.ID(),
		t.UserID(),
		t.Title(),
		t.Description(),
		t.Status().String(),
		t.StartDate(),
		t.DueDate(),
		t.StartTime(),
		t.EndTime(),
		t.Year(),
		t.Week(),
		t.DayOfWeek(),
		t.HasConflict(),
		t.PriorityScore(),
		t.Priority().String(),
		t.LastPriorityCalcAt(),
		t.EstimatedMinutes(),
		t.ActualMinutes(),
		t.EnergyLevel(),
		t.FocusLevel(),
		t.CategoryID(),
		pq.Array(t.Tags()),
		t.CompletedAt(),
		t.IsDeleted(),
		t.Version(),
		t.CreatedAt(),
		t.UpdatedAt(),
	).Scan(&newVersion)
	if err != nil {
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		return fmt.Errorf("failed to save task: %w", err)
	}

	return nil
}

// FindByID retrieves a task by its ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT` + pgTaskColumns + ` FROM tasks WHERE id = $1 AND is_deleted = FALSE`

	exec := database.ExecutorFromContext(ctx, r.conn)
	t, err := scanPgTask(exec.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return t, nil
}

// FindByIDs retrieves multiple tasks by ID, skipping missing ones.
func (r *PostgresTaskRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT` + pgTaskColumns + ` FROM tasks WHERE id = ANY($1) AND is_deleted = FALSE`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return scanPgTasks(rows)
}

// FindByUserID retrieves a user's tasks matching the filter.
func (r *PostgresTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	query := `SELECT` + pgTaskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if !filter.IncludeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	if filter.Status != nil {
		args = append(args, filter.Status.String())
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	} else if !filter.IncludeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY priority_score DESC, created_at ASC`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return scanPgTasks(rows)
}

// FindScheduled retrieves a user's non-deleted tasks occupying the given day
// bucket.
func (r *PostgresTaskRepository) FindScheduled(ctx context.Context, userID uuid.UUID, year, week, dayOfWeek int, excludeID *uuid.UUID) ([]*task.Task, error) {
	query := `SELECT` + pgTaskColumns + ` FROM tasks
		WHERE user_id = $1 AND year = $2 AND week = $3 AND day_of_week = $4
		  AND start_time IS NOT NULL AND end_time IS NOT NULL
		  AND is_deleted = FALSE`
	args := []any{userID, year, week, dayOfWeek}

	if excludeID != nil {
		args = append(args, *excludeID)
		query += fmt.Sprintf(` AND id != $%d`, len(args))
	}
	query += ` ORDER BY start_time ASC`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find scheduled tasks: %w", err)
	}
	return scanPgTasks(rows)
}

// FindDueForPlan retrieves candidate tasks for seeding a weekly plan.
func (r *PostgresTaskRepository) FindDueForPlan(ctx context.Context, userID uuid.UUID, dueBy time.Time, limit int) ([]*task.Task, error) {
	query := `SELECT` + pgTaskColumns + ` FROM tasks
		WHERE user_id = $1 AND due_date IS NOT NULL AND due_date <= $2
		  AND status NOT IN ('done', 'archived') AND is_deleted = FALSE
		ORDER BY priority_score DESC, due_date ASC
		LIMIT $3`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID, dueBy, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find due tasks: %w", err)
	}
	return scanPgTasks(rows)
}

// FindForRecalc retrieves open tasks for the priority sweep. Done and
// archived tasks keep their last score.
func (r *PostgresTaskRepository) FindForRecalc(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT` + pgTaskColumns + ` FROM tasks
		WHERE is_deleted = FALSE AND status NOT IN ('done', 'archived')
		ORDER BY user_id, created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks for recalculation: %w", err)
	}
	return scanPgTasks(rows)
}

func scanPgTask(row database.Row) (*task.Task, error) {
	var (
		s        task.State
		status   string
		priority string
		tags     []string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.Title, &s.Description, &status, &s.StartDate, &s.DueDate,
		&s.StartTime, &s.EndTime, &s.Year, &s.Week, &s.DayOfWeek, &s.HasConflict,
		&s.PriorityScore, &priority, &s.LastPriorityCalcAt,
		&s.EstimatedMinutes, &s.ActualMinutes, &s.EnergyLevel, &s.FocusLevel,
		&s.CategoryID, pq.Array(&tags), &s.CompletedAt, &s.IsDeleted,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return stateToTask(s, status, priority, tags)
}

func scanPgTasks(rows database.Rows) ([]*task.Task, error) {
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		var (
			s        task.State
			status   string
			priority string
			tags     []string
		)
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.Description, &status, &s.StartDate, &s.DueDate,
			&s.StartTime, &s.EndTime, &s.Year, &s.Week, &s.DayOfWeek, &s.HasConflict,
			&s.PriorityScore, &priority, &s.LastPriorityCalcAt,
			&s.EstimatedMinutes, &s.ActualMinutes, &s.EnergyLevel, &s.FocusLevel,
			&s.CategoryID, pq.Array(&tags), &s.CompletedAt, &s.IsDeleted,
			&s.Version, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t, err := stateToTask(s, status, priority, tags)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// stateToTask finishes rehydration after the driver-specific scan.
func stateToTask(s task.State, status, priority string, tags []string) (*task.Task, error) {
	parsedStatus, err := task.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored task has invalid status %q: %w", status, err)
	}
	parsedPriority, err := value_objects.ParsePriority(priority)
	if err != nil {
		return nil, fmt.Errorf("stored task has invalid priority %q: %w", priority, err)
	}
	s.Status = parsedStatus
	s.Priority = parsedPriority
	s.Tags = tags
	return task.Rehydrate(s), nil
}
