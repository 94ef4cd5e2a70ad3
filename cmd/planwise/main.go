package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/adapter/cli/plan"
	"github.com/minhle/planwise/adapter/cli/priority"
	"github.com/minhle/planwise/adapter/cli/task"
	"github.com/minhle/planwise/internal/app"
	"github.com/minhle/planwise/pkg/config"
	"github.com/minhle/planwise/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Default().Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Setup logger. Interactive commands stay quiet unless asked.
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.ServiceVersion = cli.Version
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Drain staged events in the background while commands run (optional
	// in the CLI; the worker owns this in server deployments).
	if cfg.OutboxProcessorEnabled {
		processor := container.NewOutboxProcessor()
		if err := processor.Start(ctx); err != nil {
			logger.Warn("failed to start outbox processor", "error", err)
		} else {
			defer processor.Stop()
		}
	}

	cliApp = cli.NewApp(
		container.CreateTaskHandler,
		container.UpdateTaskHandler,
		container.CompleteTaskHandler,
		container.ArchiveTaskHandler,
		container.DeleteTaskHandler,
		container.RecalculatePrioritiesHandler,
		container.ListTasksHandler,
		container.GetTaskHandler,
		container.ScheduleTaskHandler,
		container.UnscheduleTaskHandler,
		container.GetOrCreatePlanHandler,
		container.AddTaskToPlanHandler,
		container.CloseWeekHandler,
		container.GetPlanHandler,
	)
	cliApp.SetCurrentUserID(container.UserID)

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(task.Cmd)
	cli.AddCommand(plan.Cmd)
	cli.AddCommand(priority.Cmd)

	// Execute CLI
	cli.Execute()
}
