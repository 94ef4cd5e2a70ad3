package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/tasks/application/queries"
)

var (
	showArchived   bool
	status         string
	filterPriority string
	overdue        bool
	dueBefore      string
	dueAfter       string
	sortBy         string
	sortOrder      string
	limit          int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks with optional filtering and sorting.

Filter Options:
  --status      Filter by status (todo, in_progress, done, archived)
  --priority    Filter by priority (urgent, high, medium, low)
  --overdue     Show only overdue tasks
  --due-before  Show tasks due before date (YYYY-MM-DD)
  --due-after   Show tasks due after date (YYYY-MM-DD)

Sort Options:
  --sort        Sort by field (priority, due_date, created_at)
  --order       Sort order (asc, desc)

Examples:
  planwise task list                            # Active tasks
  planwise task list --archived                 # Include archived tasks
  planwise task list --priority urgent          # Only urgent tasks
  planwise task list --overdue                  # Overdue tasks
  planwise task list --sort due_date --order asc
  planwise task list --limit 5                  # Top 5 tasks`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.ListTasksQuery{
			UserID:          app.CurrentUserID,
			Status:          status,
			IncludeArchived: showArchived,
			Priority:        filterPriority,
			Overdue:         overdue,
			SortBy:          sortBy,
			SortOrder:       sortOrder,
			Limit:           limit,
		}

		if dueBefore != "" {
			t, err := time.Parse("2006-01-02", dueBefore)
			if err != nil {
				return fmt.Errorf("invalid --due-before format, use YYYY-MM-DD: %w", err)
			}
			query.DueBefore = &t
		}
		if dueAfter != "" {
			t, err := time.Parse("2006-01-02", dueAfter)
			if err != nil {
				return fmt.Errorf("invalid --due-after format, use YYYY-MM-DD: %w", err)
			}
			query.DueAfter = &t
		}

		ctx := cmd.Context()
		tasks, err := app.ListTasksHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		fmt.Printf("Tasks (%d):\n", len(tasks))
		fmt.Println(strings.Repeat("-", 60))

		now := time.Now()
		for _, t := range tasks {
			statusIcon := getStatusIcon(t.Status)
			priorityBadge := getPriorityBadge(t.Priority)

			dueMarker := ""
			if t.DueDate != nil && t.Status != "done" {
				today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
				if t.DueDate.Before(today) {
					dueMarker = " [OVERDUE]"
				} else if t.DueDate.Year() == now.Year() && t.DueDate.Month() == now.Month() && t.DueDate.Day() == now.Day() {
					dueMarker = " [TODAY]"
				}
			}
			conflictMarker := ""
			if t.HasConflict {
				conflictMarker = " [CONFLICT]"
			}

			fmt.Printf("%s %s %s%s%s\n", statusIcon, t.Title, priorityBadge, dueMarker, conflictMarker)
			fmt.Printf("   ID: %s\n", t.ID.String()[:8])
			fmt.Printf("   Score: %d\n", t.PriorityScore)

			if t.DueDate != nil {
				fmt.Printf("   Due: %s\n", t.DueDate.Format("2006-01-02"))
			}
			if t.Year != nil && t.Week != nil && t.DayOfWeek != nil && t.StartTime != nil && t.EndTime != nil {
				fmt.Printf("   Slot: %d-W%02d day %d %s-%s\n",
					*t.Year, *t.Week, *t.DayOfWeek,
					t.StartTime.Format("15:04"), t.EndTime.Format("15:04"))
			}
			fmt.Println()
		}

		return nil
	},
}

func getStatusIcon(status string) string {
	switch status {
	case "done":
		return "[x]"
	case "in_progress":
		return "[>]"
	case "archived":
		return "[-]"
	default:
		return "[ ]"
	}
}

func getPriorityBadge(priority string) string {
	switch priority {
	case "urgent":
		return "(!!!)"
	case "high":
		return "(!)"
	case "medium":
		return "(~)"
	case "low":
		return "(.)"
	default:
		return ""
	}
}

func init() {
	listCmd.Flags().BoolVarP(&showArchived, "archived", "a", false, "include archived tasks")
	listCmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (todo, in_progress, done, archived)")
	listCmd.Flags().StringVarP(&filterPriority, "priority", "p", "", "filter by priority (urgent, high, medium, low)")
	listCmd.Flags().BoolVar(&overdue, "overdue", false, "show only overdue tasks")
	listCmd.Flags().StringVar(&dueBefore, "due-before", "", "show tasks due before date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&dueAfter, "due-after", "", "show tasks due after date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&sortBy, "sort", "", "sort by field (priority, due_date, created_at)")
	listCmd.Flags().StringVar(&sortOrder, "order", "", "sort order (asc, desc)")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "max number of tasks to show (0 = no limit)")
}
