package priority

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/tasks/application/commands"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate task priority scores",
	Long: `Recompute the priority score and tier of every active task from
today's date. The worker runs this nightly; use this command to force a
sweep between runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RecalculatePrioritiesHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		result, err := app.RecalculatePrioritiesHandler.Handle(cmd.Context(), commands.RecalculatePrioritiesCommand{})
		if err != nil {
			return err
		}

		fmt.Printf("Recalculated %d priority scores\n", result.TasksUpdated)
		return nil
	},
}
