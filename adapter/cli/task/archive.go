package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/tasks/application/commands"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [task-id]",
	Short: "Archive a task",
	Long: `Archive a task by its ID. Archived tasks are hidden from the
default list but remain recoverable.

Examples:
  planwise task archive 550e8400-e29b-41d4-a716-446655440000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ArchiveTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		archiveTaskCmd := commands.ArchiveTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
		}

		ctx := cmd.Context()
		if err := app.ArchiveTaskHandler.Handle(ctx, archiveTaskCmd); err != nil {
			return fmt.Errorf("failed to archive task: %w", err)
		}

		fmt.Printf("Task archived: %s\n", taskID)
		return nil
	},
}
