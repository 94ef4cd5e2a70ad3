// Package app wires configuration, storage, messaging and handlers into a
// single container owned by the process entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	plannerCommands "github.com/minhle/planwise/internal/planner/application/commands"
	plannerQueries "github.com/minhle/planwise/internal/planner/application/queries"
	plannerServices "github.com/minhle/planwise/internal/planner/application/services"
	"github.com/minhle/planwise/internal/planner/domain/plan"
	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/bucketlock"
	"github.com/minhle/planwise/internal/shared/infrastructure/database"
	_ "github.com/minhle/planwise/internal/shared/infrastructure/database/postgres" // register postgres driver
	"github.com/minhle/planwise/internal/shared/infrastructure/database/sqlite"
	"github.com/minhle/planwise/internal/shared/infrastructure/eventbus"
	"github.com/minhle/planwise/internal/shared/infrastructure/migrations"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/shared/infrastructure/security"
	"github.com/minhle/planwise/internal/tasks/application/commands"
	"github.com/minhle/planwise/internal/tasks/application/queries"
	"github.com/minhle/planwise/internal/tasks/application/services"
	"github.com/minhle/planwise/internal/tasks/domain/category"
	"github.com/minhle/planwise/internal/tasks/domain/task"
	"github.com/minhle/planwise/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// UserID is the local single-user identity all operations run as.
	UserID uuid.UUID

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis backs the bucket locks; nil in local mode.
	RedisClient *redis.Client
	Locker      bucketlock.Locker

	// Publishers
	EventPublisher eventbus.Publisher

	// Repositories
	TaskRepo     task.Repository
	CategoryRepo category.Repository
	PlanRepo     plan.Repository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Services
	PriorityEngine   *services.PriorityEngine
	ConflictDetector *plannerServices.ConflictDetector

	// Task Command Handlers
	CreateTaskHandler            *commands.CreateTaskHandler
	UpdateTaskHandler            *commands.UpdateTaskHandler
	CompleteTaskHandler          *commands.CompleteTaskHandler
	ArchiveTaskHandler           *commands.ArchiveTaskHandler
	DeleteTaskHandler            *commands.DeleteTaskHandler
	RecalculatePrioritiesHandler *commands.RecalculatePrioritiesHandler

	// Task Query Handlers
	ListTasksHandler *queries.ListTasksHandler
	GetTaskHandler   *queries.GetTaskHandler

	// Planner Command Handlers
	ScheduleTaskHandler    *plannerCommands.ScheduleTaskHandler
	UnscheduleTaskHandler  *plannerCommands.UnscheduleTaskHandler
	GetOrCreatePlanHandler *plannerCommands.GetOrCreatePlanHandler
	AddTaskToPlanHandler   *plannerCommands.AddTaskToPlanHandler
	CloseWeekHandler       *plannerCommands.CloseWeekHandler

	// Planner Query Handlers
	GetPlanHandler *plannerQueries.GetPlanHandler
}

// NewContainer creates and wires all application dependencies. With no
// DATABASE_URL configured it runs in local mode: SQLite storage, in-process
// locks and a noop publisher.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", cfg.UserID, err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		UserID: userID,
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initLocker(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initPublisher()

	if err := c.initRepositories(); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbCfg := database.Config{
		Driver: database.DriverPostgres,
		URL:    c.Config.DatabaseURL,
	}
	if c.Config.DatabaseURL == "" {
		dbCfg = database.DefaultLocalConfig()
		if c.Config.SQLitePath != "" {
			dbCfg.SQLitePath = c.Config.SQLitePath
		}
		dbPath, err := security.ValidateDBPath(dbCfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("invalid sqlite path: %w", err)
		}
		dbCfg.SQLitePath = dbPath
		if err := database.EnsureDirectory(dbCfg.SQLitePath); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	// Local SQLite databases are migrated in-process; Postgres schemas are
	// managed by the deployment.
	if c.DBDriver == database.DriverSQLite {
		sqliteConn, ok := conn.(*sqlite.Connection)
		if !ok {
			return fmt.Errorf("unexpected sqlite connection type %T", conn)
		}
		if err := migrations.RunSQLiteMigrations(ctx, sqliteConn.DB()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := c.ensureLocalUser(ctx); err != nil {
			return err
		}
	}

	c.Logger.Debug("database ready", "driver", c.DBDriver.String())
	return nil
}

// ensureLocalUser creates the single user row that owns all data in local
// SQLite mode.
func (c *Container) ensureLocalUser(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.DBConn.Exec(ctx,
		`INSERT OR IGNORE INTO users (id, email, display_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.UserID.String(), "local@planwise", "Local User", now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure local user: %w", err)
	}
	return nil
}

func (c *Container) initLocker(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		c.Locker = bucketlock.NewNoopLocker()
		return nil
	}

	opts, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		if !c.Config.IsDevelopment() {
			client.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Logger.Warn("redis not available, bucket locks run in-process", "error", err)
		client.Close()
		c.Locker = bucketlock.NewInMemoryLocker()
		return nil
	}

	c.RedisClient = client
	c.Locker = bucketlock.NewRedisLocker(client)
	c.Logger.Info("connected to redis")
	return nil
}

func (c *Container) initPublisher() {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		c.Logger.Warn("rabbitmq not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return
	}
	c.EventPublisher = eventbus.NewBreakerPublisher(publisher, eventbus.DefaultBreakerConfig(), c.Logger)
	c.Logger.Info("connected to rabbitmq")
}

func (c *Container) initRepositories() error {
	factory := NewRepositoryFactory(c.DBConn)

	var err error
	if c.TaskRepo, err = factory.TaskRepository(); err != nil {
		return err
	}
	if c.CategoryRepo, err = factory.CategoryRepository(); err != nil {
		return err
	}
	if c.PlanRepo, err = factory.PlanRepository(); err != nil {
		return err
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return err
	}

	c.UnitOfWork = database.NewUnitOfWork(c.DBConn)
	return nil
}

func (c *Container) initHandlers() {
	c.PriorityEngine = services.NewPriorityEngine()
	c.ConflictDetector = plannerServices.NewConflictDetector(c.TaskRepo, c.Locker)

	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.PriorityEngine, c.UnitOfWork)
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo, c.PriorityEngine, c.UnitOfWork)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ArchiveTaskHandler = commands.NewArchiveTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.RecalculatePrioritiesHandler = commands.NewRecalculatePrioritiesHandler(c.TaskRepo, c.OutboxRepo, c.PriorityEngine, c.UnitOfWork)

	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo, c.CategoryRepo)
	c.GetTaskHandler = queries.NewGetTaskHandler(c.TaskRepo, c.CategoryRepo)

	c.ScheduleTaskHandler = plannerCommands.NewScheduleTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.ConflictDetector)
	c.UnscheduleTaskHandler = plannerCommands.NewUnscheduleTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.ConflictDetector)
	c.GetOrCreatePlanHandler = plannerCommands.NewGetOrCreatePlanHandler(c.PlanRepo, c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.AddTaskToPlanHandler = plannerCommands.NewAddTaskToPlanHandler(c.PlanRepo, c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.CloseWeekHandler = plannerCommands.NewCloseWeekHandler(c.PlanRepo, c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Locker)

	c.GetPlanHandler = plannerQueries.NewGetPlanHandler(c.PlanRepo, c.TaskRepo)
}

// NewOutboxProcessor creates an outbox processor from the configured
// repository and publisher.
func (c *Container) NewOutboxProcessor() *outbox.Processor {
	processorCfg := outbox.DefaultProcessorConfig()
	processorCfg.PollInterval = c.Config.OutboxPollInterval
	processorCfg.BatchSize = c.Config.OutboxBatchSize
	processorCfg.MaxRetries = c.Config.OutboxMaxRetries
	return outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, c.Logger)
}

// Close releases all container resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("failed to close redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("failed to close database", "error", err)
		}
	}
}
