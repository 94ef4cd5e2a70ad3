package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/planner/application/commands"
)

var unscheduleCmd = &cobra.Command{
	Use:   "unschedule [task-id]",
	Short: "Remove a task from its time slot",
	Long: `Clear a task's slot assignment. Conflict flags for the tasks left
in the day are recomputed. Unscheduling a task with no slot is a no-op.

Examples:
  planwise task unschedule 550e8400-e29b-41d4-a716-446655440000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UnscheduleTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		unscheduleTaskCmd := commands.UnscheduleTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
		}

		ctx := cmd.Context()
		if err := app.UnscheduleTaskHandler.Handle(ctx, unscheduleTaskCmd); err != nil {
			return fmt.Errorf("failed to unschedule task: %w", err)
		}

		fmt.Printf("Task unscheduled: %s\n", taskID)
		return nil
	},
}
