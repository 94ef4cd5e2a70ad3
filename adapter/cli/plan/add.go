package plan

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/planner/application/commands"
)

var addCmd = &cobra.Command{
	Use:   "add [plan-id] [task-id]",
	Short: "Add a task to a plan",
	Long: `Add a task to an open weekly plan. Adding a task that is already
a member leaves the plan unchanged.

Examples:
  planwise plan add 0f3c... 550e...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddTaskToPlanHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid plan ID: %w", err)
		}
		taskID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		addTaskCmd := commands.AddTaskToPlanCommand{
			UserID: app.CurrentUserID,
			PlanID: planID,
			TaskID: taskID,
		}

		ctx := cmd.Context()
		p, err := app.AddTaskToPlanHandler.Handle(ctx, addTaskCmd)
		if err != nil {
			return fmt.Errorf("failed to add task to plan: %w", err)
		}

		fmt.Printf("Task added to plan %d-W%02d\n", p.Year(), p.Week())
		fmt.Printf("  tasks:  %d\n", len(p.TaskIDs()))
		fmt.Printf("  target: %d\n", p.TargetTasks())
		return nil
	},
}
