package app

import (
	"fmt"

	"github.com/minhle/planwise/internal/planner/domain/plan"
	plannerPersistence "github.com/minhle/planwise/internal/planner/infrastructure/persistence"
	"github.com/minhle/planwise/internal/shared/infrastructure/database"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/domain/category"
	"github.com/minhle/planwise/internal/tasks/domain/task"
	taskPersistence "github.com/minhle/planwise/internal/tasks/infrastructure/persistence"
)

// RepositoryFactory creates repositories for the configured database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// TaskRepository creates a task repository for the configured driver.
func (f *RepositoryFactory) TaskRepository() (task.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return taskPersistence.NewPostgresTaskRepository(f.conn), nil
	case database.DriverSQLite:
		return taskPersistence.NewSQLiteTaskRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// CategoryRepository creates a category repository for the configured driver.
func (f *RepositoryFactory) CategoryRepository() (category.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return taskPersistence.NewPostgresCategoryRepository(f.conn), nil
	case database.DriverSQLite:
		return taskPersistence.NewSQLiteCategoryRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// PlanRepository creates a weekly plan repository for the configured driver.
func (f *RepositoryFactory) PlanRepository() (plan.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return plannerPersistence.NewPostgresPlanRepository(f.conn), nil
	case database.DriverSQLite:
		return plannerPersistence.NewSQLitePlanRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return outbox.NewPostgresRepository(f.conn), nil
	case database.DriverSQLite:
		return outbox.NewSQLiteRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}
