package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/planner/application/commands"
)

var (
	startYear int
	startWeek int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a weekly plan",
	Long: `Create the plan for a week, seeded with the most urgent due
tasks. If the plan already exists it is returned unchanged, so running
start twice is safe.

Examples:
  planwise plan start                      # Current week
  planwise plan start --year 2026 --week 37`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetOrCreatePlanHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		year, week := startYear, startWeek
		if year == 0 || week == 0 {
			year, week = currentWeek()
		}

		startPlanCmd := commands.GetOrCreatePlanCommand{
			UserID: app.CurrentUserID,
			Year:   year,
			Week:   week,
		}

		ctx := cmd.Context()
		p, err := app.GetOrCreatePlanHandler.Handle(ctx, startPlanCmd)
		if err != nil {
			return fmt.Errorf("failed to start plan: %w", err)
		}

		fmt.Printf("Plan for %d-W%02d: %s\n", p.Year(), p.Week(), p.ID())
		fmt.Printf("  tasks:  %d\n", len(p.TaskIDs()))
		fmt.Printf("  target: %d\n", p.TargetTasks())
		if p.Locked() {
			fmt.Println("  status: closed")
		}
		return nil
	},
}

func init() {
	startCmd.Flags().IntVar(&startYear, "year", 0, "plan year (defaults to current)")
	startCmd.Flags().IntVar(&startWeek, "week", 0, "week number (defaults to current)")
}
