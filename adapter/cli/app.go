package cli

import (
	"github.com/google/uuid"

	plannerCommands "github.com/minhle/planwise/internal/planner/application/commands"
	plannerQueries "github.com/minhle/planwise/internal/planner/application/queries"
	"github.com/minhle/planwise/internal/tasks/application/commands"
	"github.com/minhle/planwise/internal/tasks/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
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

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createTaskHandler *commands.CreateTaskHandler,
	updateTaskHandler *commands.UpdateTaskHandler,
	completeTaskHandler *commands.CompleteTaskHandler,
	archiveTaskHandler *commands.ArchiveTaskHandler,
	deleteTaskHandler *commands.DeleteTaskHandler,
	recalculatePrioritiesHandler *commands.RecalculatePrioritiesHandler,
	listTasksHandler *queries.ListTasksHandler,
	getTaskHandler *queries.GetTaskHandler,
	scheduleTaskHandler *plannerCommands.ScheduleTaskHandler,
	unscheduleTaskHandler *plannerCommands.UnscheduleTaskHandler,
	getOrCreatePlanHandler *plannerCommands.GetOrCreatePlanHandler,
	addTaskToPlanHandler *plannerCommands.AddTaskToPlanHandler,
	closeWeekHandler *plannerCommands.CloseWeekHandler,
	getPlanHandler *plannerQueries.GetPlanHandler,
) *App {
	return &App{
		CreateTaskHandler:            createTaskHandler,
		UpdateTaskHandler:            updateTaskHandler,
		CompleteTaskHandler:          completeTaskHandler,
		ArchiveTaskHandler:           archiveTaskHandler,
		DeleteTaskHandler:            deleteTaskHandler,
		RecalculatePrioritiesHandler: recalculatePrioritiesHandler,
		ListTasksHandler:             listTasksHandler,
		GetTaskHandler:               getTaskHandler,
		ScheduleTaskHandler:          scheduleTaskHandler,
		UnscheduleTaskHandler:        unscheduleTaskHandler,
		GetOrCreatePlanHandler:       getOrCreatePlanHandler,
		AddTaskToPlanHandler:         addTaskToPlanHandler,
		CloseWeekHandler:             closeWeekHandler,
		GetPlanHandler:               getPlanHandler,
		CurrentUserID:                uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
