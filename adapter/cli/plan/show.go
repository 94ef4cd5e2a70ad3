package plan

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/planner/application/queries"
)

var (
	showYear int
	showWeek int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a weekly plan",
	Long: `Display the plan for a week with its member tasks in plan order.

Examples:
  planwise plan show                      # Current week
  planwise plan show --year 2026 --week 37`,
	Aliases: []string{"get", "view"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetPlanHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		year, week := showYear, showWeek
		if year == 0 || week == 0 {
			year, week = currentWeek()
		}

		query := queries.GetPlanQuery{
			UserID: app.CurrentUserID,
			Year:   year,
			Week:   week,
		}

		ctx := cmd.Context()
		p, err := app.GetPlanHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to get plan: %w", err)
		}

		status := "open"
		if p.Locked {
			status = "closed"
		}
		fmt.Printf("Plan %d-W%02d (%s)\n", p.Year, p.Week, status)
		fmt.Printf("  ID:        %s\n", p.ID)
		fmt.Printf("  Progress:  %d/%d\n", p.CompletedTasks, p.TargetTasks)
		if p.Notes != "" {
			fmt.Printf("  Notes:     %s\n", p.Notes)
		}

		if len(p.Tasks) == 0 {
			fmt.Println("\nNo tasks in this plan.")
			return nil
		}

		fmt.Println()
		fmt.Println(strings.Repeat("-", 60))
		for i, t := range p.Tasks {
			marker := "[ ]"
			if t.Status == "done" {
				marker = "[x]"
			}
			conflict := ""
			if t.HasConflict {
				conflict = " [CONFLICT]"
			}
			fmt.Printf("%2d. %s %s (%s, score %d)%s\n", i+1, marker, t.Title, t.Priority, t.PriorityScore, conflict)
			if t.DueDate != nil {
				fmt.Printf("      due %s\n", t.DueDate.Format("2006-01-02"))
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().IntVar(&showYear, "year", 0, "plan year (defaults to current)")
	showCmd.Flags().IntVar(&showWeek, "week", 0, "week number (defaults to current)")
}
