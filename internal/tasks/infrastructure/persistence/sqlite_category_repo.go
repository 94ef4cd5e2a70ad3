package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
	"github.com/minhle/planwise/internal/shared/infrastructure/database"
	"github.com/minhle/planwise/internal/tasks/domain/category"
)

// SQLiteCategoryRepository implements category.Repository using SQLite.
type SQLiteCategoryRepository struct {
	conn database.Connection
}

// NewSQLiteCategoryRepository creates a new SQLite category repository.
func NewSQLiteCategoryRepository(conn database.Connection) *SQLiteCategoryRepository {
	return &SQLiteCategoryRepository{conn: conn}
}

// Save upserts a category.
func (r *SQLiteCategoryRepository) Save(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			updated_at = excluded.updated_at
	`

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		c.ID().String(),
		c.UserID().String(),
		c.Name(),
		c.Color(),
		c.CreatedAt().UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// FindByID retrieves a category by its ID.
func (r *SQLiteCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT id, user_id, name, color, created_at, updated_at FROM categories WHERE id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	c, err := scanSQLiteCategory(exec.QueryRow(ctx, query, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return c, nil
}

// FindByUserID retrieves all categories for a user.
func (r *SQLiteCategoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	query := `SELECT id, user_id, name, color, created_at, updated_at FROM categories WHERE user_id = ? ORDER BY name`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		c, err := scanSQLiteCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ResolveNames maps category ids to names for read-side population.
func (r *SQLiteCategoryRepository) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, name FROM categories WHERE id IN (`
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += `, `
		}
		query += `?`
		args[i] = id.String()
	}
	query += `)`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category names: %w", err)
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var rawID, name string
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category name: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		names[id] = name
	}
	return names, rows.Err()
}

func scanSQLiteCategory(row database.Row) (*category.Category, error) {
	var (
		rawID     string
		rawUserID string
		name      string
		color     string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&rawID, &rawUserID, &name, &color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored category has invalid id %q: %w", rawID, err)
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("stored category has invalid user id %q: %w", rawUserID, err)
	}

	created, _ := time.Parse(time.RFC3339, createdAt)
	updated, _ := time.Parse(time.RFC3339, updatedAt)
	base := domain.RehydrateBaseEntity(id, created, updated)
	return category.Rehydrate(base, userID, name, color), nil
}
