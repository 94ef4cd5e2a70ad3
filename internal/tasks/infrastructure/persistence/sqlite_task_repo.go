package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/infrastructure/database"
	"github.com/minhle/planwise/internal/tasks/domain/task"
)

const sqliteTaskColumns = `
	id, user_id, title, description, status, start_date, due_date,
	start_time, end_time, year, week, day_of_week, has_conflict,
	priority_score, priority, last_priority_calc_at,
	estimated_minutes, actual_minutes, energy_level, focus_level,
	category_id, tags, completed_at, is_deleted, version, created_at, updated_at`

// SQLiteTaskRepository implements task.Repository using SQLite. Timestamps
// are stored as RFC3339 text and tags as a JSON array.
type SQLiteTaskRepository struct {
	conn database.Connection
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

// Save upserts a task with optimistic locking on the version column.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, status, start_date, due_date,
			start_time, end_time, year, week, day_of_week, has_conflict,
			priority_score, priority, last_priority_calc_at,
			estimated_minutes, actual_minutes, energy_level, focus_level,
			category_id, tags, completed_at, is_deleted, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			start_date = excluded.start_date,
			due_date = excluded.due_date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			year = excluded.year,
			week = excluded.week,
			day_of_week = excluded.day_of_week,
			has_conflict = excluded.has_conflict,
			priority_score = excluded.priority_score,
			priority = excluded.priority,
			last_priority_calc_at = excluded.last_priority_calc_at,
			estimated_minutes = excluded.estimated_minutes,
			actual_minutes = excluded.actual_minutes,
			energy_level = excluded.energy_level,
			focus_level = excluded.focus_level,
			category_id = excluded.category_id,
			tags = excluded.tags,
			completed_at = excluded.completed_at,
			is_deleted = excluded.is_deleted,
			version = tasks.version + 1,
			updated_at = excluded.updated_at
		WHERE tasks.version = ?
		RETURNING version
	`

	tags, err := json.Marshal(t.Tags())
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err = exec.QueryRow(ctx, query,
		t.ID().String(),
		t.UserID().String(),
		t.Title(),
		t.Description(),
		t.Status().String(),
		sqliteTime(t.StartDate()),
		sqliteTime(t.DueDate()),
		sqliteTime(t.StartTime()),
		sqliteTime(t.EndTime()),
		t.Year(),
		t.Week(),
		t.DayOfWeek(),
		t.HasConflict(),
		t.PriorityScore(),
		t.Priority().String(),
		sqliteTime(t.LastPriorityCalcAt()),
		t.EstimatedMinutes(),
		t.ActualMinutes(),
		t.EnergyLevel(),
		t.FocusLevel(),
		sqliteUUID(t.CategoryID()),
		string(tags),
		sqliteTime(t.CompletedAt()),
		t.IsDeleted(),
		t.Version(),
		t.CreatedAt().UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		t.Version(),
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
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT` + sqliteTaskColumns + ` FROM tasks WHERE id = ? AND is_deleted = 0`

	exec := database.ExecutorFromContext(ctx, r.conn)
	t, err := scanSQLiteTask(exec.QueryRow(ctx, query, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return t, nil
}

// FindByIDs retrieves multiple tasks by ID, skipping missing ones.
func (r *SQLiteTaskRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT` + sqliteTaskColumns + ` FROM tasks WHERE id IN (`
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += `, `
		}
		query += `?`
		args[i] = id.String()
	}
	query += `) AND is_deleted = 0`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return scanSQLiteTasks(rows)
}

// FindByUserID retrieves a user's tasks matching the filter.
func (r *SQLiteTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	query := `SELECT` + sqliteTaskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID.String()}

	if !filter.IncludeDeleted {
		query += ` AND is_deleted = 0`
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, filter.Status.String())
	} else if !filter.IncludeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY priority_score DESC, created_at ASC`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return scanSQLiteTasks(rows)
}

// FindScheduled retrieves a user's non-deleted tasks occupying the given day
// bucket.
func (r *SQLiteTaskRepository) FindScheduled(ctx context.Context, userID uuid.UUID, year, week, dayOfWeek int, excludeID *uuid.UUID) ([]*task.Task, error) {
	query := `SELECT` + sqliteTaskColumns + ` FROM tasks
		WHERE user_id = ? AND year = ? AND week = ? AND day_of_week = ?
		  AND start_time IS NOT NULL AND end_time IS NOT NULL
		  AND is_deleted = 0`
	args := []any{userID.String(), year, week, dayOfWeek}

	if excludeID != nil {
		query += ` AND id != ?`
		args = append(args, excludeID.String())
	}
	query += ` ORDER BY start_time ASC`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find scheduled tasks: %w", err)
	}
	return scanSQLiteTasks(rows)
}

// FindDueForPlan retrieves candidate tasks for seeding a weekly plan.
func (r *SQLiteTaskRepository) FindDueForPlan(ctx context.Context, userID uuid.UUID, dueBy time.Time, limit int) ([]*task.Task, error) {
	query := `SELECT` + sqliteTaskColumns + ` FROM tasks
		WHERE user_id = ? AND due_date IS NOT NULL AND due_date <= ?
		  AND status NOT IN ('done', 'archived') AND is_deleted = 0
		ORDER BY priority_score DESC, due_date ASC
		LIMIT ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String(), dueBy.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find due tasks: %w", err)
	}
	return scanSQLiteTasks(rows)
}

// FindForRecalc retrieves open tasks for the priority sweep. Done and
// archived tasks keep their last score.
func (r *SQLiteTaskRepository) FindForRecalc(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT` + sqliteTaskColumns + ` FROM tasks
		WHERE is_deleted = 0 AND status NOT IN ('done', 'archived')
		ORDER BY user_id, created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks for recalculation: %w", err)
	}
	return scanSQLiteTasks(rows)
}

// sqliteTaskRow carries driver-level values before conversion.
type sqliteTaskRow struct {
	id                 string
	userID             string
	title              string
	description        string
	status             string
	startDate          sql.NullString
	dueDate            sql.NullString
	startTime          sql.NullString
	endTime            sql.NullString
	year               sql.NullInt64
	week               sql.NullInt64
	dayOfWeek          sql.NullInt64
	hasConflict        bool
	priorityScore      int
	priority           string
	lastPriorityCalcAt sql.NullString
	estimatedMinutes   sql.NullInt64
	actualMinutes      sql.NullInt64
	energyLevel        sql.NullInt64
	focusLevel         sql.NullInt64
	categoryID         sql.NullString
	tags               string
	completedAt        sql.NullString
	isDeleted          bool
	version            int
	createdAt          string
	updatedAt          string
}

func (row *sqliteTaskRow) scan(scanner database.Row) error {
	return scanner.Scan(
		&row.id, &row.userID, &row.title, &row.description, &row.status, &row.startDate, &row.dueDate,
		&row.startTime, &row.endTime, &row.year, &row.week, &row.dayOfWeek, &row.hasConflict,
		&row.priorityScore, &row.priority, &row.lastPriorityCalcAt,
		&row.estimatedMinutes, &row.actualMinutes, &row.energyLevel, &row.focusLevel,
		&row.categoryID, &row.tags, &row.completedAt, &row.isDeleted,
		&row.version, &row.createdAt, &row.updatedAt,
	)
}

func (row *sqliteTaskRow) toTask() (*task.Task, error) {
	id, err := uuid.Parse(row.id)
	if err != nil {
		return nil, fmt.Errorf("stored task has invalid id %q: %w", row.id, err)
	}
	userID, err := uuid.Parse(row.userID)
	if err != nil {
		return nil, fmt.Errorf("stored task has invalid user id %q: %w", row.userID, err)
	}

	var tags []string
	if row.tags != "" {
		if err := json.Unmarshal([]byte(row.tags), &tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	s := task.State{
		ID:                 id,
		UserID:             userID,
		Title:              row.title,
		Description:        row.description,
		StartDate:          parseSQLiteTime(row.startDate),
		DueDate:            parseSQLiteTime(row.dueDate),
		StartTime:          parseSQLiteTime(row.startTime),
		EndTime:            parseSQLiteTime(row.endTime),
		Year:               nullInt(row.year),
		Week:               nullInt(row.week),
		DayOfWeek:          nullInt(row.dayOfWeek),
		HasConflict:        row.hasConflict,
		PriorityScore:      row.priorityScore,
		LastPriorityCalcAt: parseSQLiteTime(row.lastPriorityCalcAt),
		EstimatedMinutes:   nullInt(row.estimatedMinutes),
		ActualMinutes:      nullInt(row.actualMinutes),
		EnergyLevel:        nullInt(row.energyLevel),
		FocusLevel:         nullInt(row.focusLevel),
		CompletedAt:        parseSQLiteTime(row.completedAt),
		IsDeleted:          row.isDeleted,
		Version:            row.version,
	}
	if row.categoryID.Valid {
		categoryID, err := uuid.Parse(row.categoryID.String)
		if err != nil {
			return nil, fmt.Errorf("stored task has invalid category id %q: %w", row.categoryID.String, err)
		}
		s.CategoryID = &categoryID
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, row.createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, row.updatedAt)

	return stateToTask(s, row.status, row.priority, tags)
}

func scanSQLiteTask(scanner database.Row) (*task.Task, error) {
	var row sqliteTaskRow
	if err := row.scan(scanner); err != nil {
		return nil, err
	}
	return row.toTask()
}

func scanSQLiteTasks(rows database.Rows) ([]*task.Task, error) {
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		var row sqliteTaskRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t, err := row.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func sqliteTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func sqliteUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func parseSQLiteTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
