package task

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/adapter/cli"
	internalApp "github.com/minhle/planwise/internal/app"
	"github.com/minhle/planwise/internal/tasks/application/queries"
	"github.com/minhle/planwise/internal/tasks/domain/category"
	"github.com/minhle/planwise/pkg/config"
)

// testUserID is a fixed user ID for tests
var testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// testCategoryID is seeded per test database by setupLocalModeTestApp.
var testCategoryID uuid.UUID

// setupLocalModeTestApp creates a test application with SQLite for integration tests.
func setupLocalModeTestApp(t *testing.T) (*cli.App, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "task-cli-test-*")
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:     "test",
		LogLevel:   "error",
		UserID:     testUserID.String(),
		SQLitePath: filepath.Join(tmpDir, "test.db"),
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	ctx := context.Background()
	container, err := internalApp.NewContainer(ctx, cfg, logger)
	require.NoError(t, err)

	cat, err := category.NewCategory(testUserID, "Work", "#2d6cdf")
	require.NoError(t, err)
	require.NoError(t, container.CategoryRepo.Save(ctx, cat))
	testCategoryID = cat.ID()

	cliApp := cli.NewApp(
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
	cliApp.SetCurrentUserID(testUserID)

	cleanup := func() {
		container.Close()
		os.RemoveAll(tmpDir)
	}

	return cliApp, cleanup
}

func TestCreateCmd_CreatesTask(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	// Reset flags before test
	description = "Test task description"
	startDate = ""
	dueDate = ""
	tags = []string{"cli", "test"}
	categoryID = testCategoryID.String()

	createCmd.SetContext(ctx)

	err := createCmd.RunE(createCmd, []string{"Test task from CLI"})
	require.NoError(t, err)

	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, "Test task from CLI", tasks[0].Title)
	assert.Equal(t, "Test task description", tasks[0].Description)
	assert.Equal(t, []string{"cli", "test"}, tasks[0].Tags)
	assert.Equal(t, "low", tasks[0].Priority)
}

func TestCreateCmd_WithDueDate(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	description = ""
	startDate = ""
	dueDate = "2026-02-15"
	tags = nil
	categoryID = testCategoryID.String()

	createCmd.SetContext(ctx)

	err := createCmd.RunE(createCmd, []string{"Task with due date"})
	require.NoError(t, err)

	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, "Task with due date", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, 2026, tasks[0].DueDate.Year())
	assert.Equal(t, 2, int(tasks[0].DueDate.Month()))
	assert.Equal(t, 15, tasks[0].DueDate.Day())
}

func TestCreateCmd_MissingCategory(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	description = ""
	startDate = ""
	dueDate = ""
	tags = nil
	categoryID = ""

	createCmd.SetContext(ctx)

	err := createCmd.RunE(createCmd, []string{"Uncategorized task"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category is required")

	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateCmd_InvalidDueDate(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	description = ""
	startDate = ""
	dueDate = "invalid-date"
	tags = nil
	categoryID = testCategoryID.String()

	createCmd.SetContext(ctx)

	err := createCmd.RunE(createCmd, []string{"Task with bad date"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid due date format")
}

func TestCompleteCmd_MarksTaskDone(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	description = ""
	startDate = ""
	dueDate = ""
	tags = nil
	categoryID = testCategoryID.String()
	createCmd.SetContext(ctx)
	require.NoError(t, createCmd.RunE(createCmd, []string{"Finish me"}))

	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	completeCmd.SetContext(ctx)
	require.NoError(t, completeCmd.RunE(completeCmd, []string{tasks[0].ID.String()}))

	got, err := app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{
		TaskID: tasks[0].ID,
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, 0, got.PriorityScore)
}

func TestCompleteCmd_InvalidID(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	completeCmd.SetContext(context.Background())

	err := completeCmd.RunE(completeCmd, []string{"not-a-uuid"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid task ID")
}

func TestScheduleCmd_AssignsSlot(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	description = ""
	startDate = ""
	dueDate = ""
	tags = nil
	categoryID = testCategoryID.String()
	createCmd.SetContext(ctx)
	require.NoError(t, createCmd.RunE(createCmd, []string{"Deep work"}))

	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	slotYear = 2026
	slotWeek = 12
	slotDay = 3
	slotStart = "09:00"
	slotEnd = "10:30"
	scheduleCmd.SetContext(ctx)
	require.NoError(t, scheduleCmd.RunE(scheduleCmd, []string{tasks[0].ID.String()}))

	got, err := app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{
		TaskID: tasks[0].ID,
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2026, *got.Year)
	require.NotNil(t, got.Week)
	assert.Equal(t, 12, *got.Week)
	require.NotNil(t, got.DayOfWeek)
	assert.Equal(t, 3, *got.DayOfWeek)
	require.NotNil(t, got.StartTime)
	assert.Equal(t, "09:00", got.StartTime.Format("15:04"))
	assert.False(t, got.HasConflict)

	// Clearing the slot again is observable through the query side.
	unscheduleCmd.SetContext(ctx)
	require.NoError(t, unscheduleCmd.RunE(unscheduleCmd, []string{tasks[0].ID.String()}))

	got, err = app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{
		TaskID: tasks[0].ID,
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	assert.Nil(t, got.Year)
	assert.Nil(t, got.StartTime)
}

func TestScheduleCmd_BadClock(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	slotYear = 2026
	slotWeek = 12
	slotDay = 3
	slotStart = "9am"
	slotEnd = "10:30"
	scheduleCmd.SetContext(context.Background())

	err := scheduleCmd.RunE(scheduleCmd, []string{uuid.New().String()})
	assert.Error(t, err)
}
