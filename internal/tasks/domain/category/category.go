// Package category holds the externally-owned category reference consumed
// by tasks.
package category

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
)

var ErrEmptyName = errors.New("category name cannot be empty")

// Category labels tasks. Tasks reference categories by id only; the name is
// resolved on read where a consumer needs it.
type Category struct {
	domain.BaseEntity
	userID uuid.UUID
	name   string
	color  string
}

// NewCategory creates a new category.
func NewCategory(userID uuid.UUID, name, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Category{
		BaseEntity: domain.NewBaseEntity(),
		userID:     userID,
		name:       name,
		color:      color,
	}, nil
}

// Rehydrate reconstructs a category from persisted state.
func Rehydrate(base domain.BaseEntity, userID uuid.UUID, name, color string) *Category {
	return &Category{
		BaseEntity: base,
		userID:     userID,
		name:       name,
		color:      color,
	}
}

func (c *Category) UserID() uuid.UUID { return c.userID }
func (c *Category) Name() string      { return c.name }
func (c *Category) Color() string     { return c.color }

// Repository defines persistence for categories.
type Repository interface {
	Save(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Category, error)

	// ResolveNames maps category ids to names for read-side population.
	ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
