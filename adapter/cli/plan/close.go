package plan

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/planner/application/commands"
)

var closeCmd = &cobra.Command{
	Use:   "close [plan-id]",
	Short: "Close a weekly plan",
	Long: `Close a plan at the end of its week. The completed count is
derived from the member tasks that are done, and the plan locks against
further changes.

Examples:
  planwise plan close 0f3c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CloseWeekHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid plan ID: %w", err)
		}

		closeCmd := commands.CloseWeekCommand{
			UserID: app.CurrentUserID,
			PlanID: planID,
		}

		ctx := cmd.Context()
		p, err := app.CloseWeekHandler.Handle(ctx, closeCmd)
		if err != nil {
			return fmt.Errorf("failed to close plan: %w", err)
		}

		fmt.Printf("Plan %d-W%02d closed\n", p.Year(), p.Week())
		fmt.Printf("  completed: %d/%d\n", p.CompletedTasks(), p.TargetTasks())
		return nil
	},
}
