package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
	"github.com/minhle/planwise/internal/shared/infrastructure/database"
	"github.com/minhle/planwise/internal/tasks/domain/category"
)

// ErrDuplicateCategory is returned when a category name already exists for
// the user.
var ErrDuplicateCategory = errors.New("category name already exists")

// ErrCategoryNotFound is returned when a category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// PostgresCategoryRepository implements category.Repository using PostgreSQL.
type PostgresCategoryRepository struct {
	conn database.Connection
}

// NewPostgresCategoryRepository creates a new PostgreSQL category repository.
func NewPostgresCategoryRepository(conn database.Connection) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{conn: conn}
}

// Save upserts a category.
func (r *PostgresCategoryRepository) Save(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			updated_at = NOW()
	`

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		c.ID(), c.UserID(), c.Name(), c.Color(), c.CreatedAt(), c.UpdatedAt(),
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
func (r *PostgresCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT id, user_id, name, color, created_at, updated_at FROM categories WHERE id = $1`

	exec := database.ExecutorFromContext(ctx, r.conn)
	c, err := scanPgCategory(exec.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return c, nil
}

// FindByUserID retrieves all categories for a user.
func (r *PostgresCategoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	query := `SELECT id, user_id, name, color, created_at, updated_at FROM categories WHERE user_id = $1 ORDER BY name`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		c, err := scanPgCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ResolveNames maps category ids to names for read-side population.
func (r *PostgresCategoryRepository) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, name FROM categories WHERE id = ANY($1)`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category names: %w", err)
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func scanPgCategory(row database.Row) (*category.Category, error) {
	var (
		id        uuid.UUID
		userID    uuid.UUID
		name      string
		color     string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &userID, &name, &color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	base := domain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return category.Rehydrate(base, userID, name, color), nil
}
