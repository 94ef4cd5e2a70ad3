package task

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/tasks/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Long: `Display detailed information about a specific task.

Examples:
  planwise task show 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"get", "view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		query := queries.GetTaskQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		ctx := cmd.Context()
		t, err := app.GetTaskHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		fmt.Printf("Task: %s\n", t.ID)
		fmt.Printf("  Title:       %s\n", t.Title)
		fmt.Printf("  Status:      %s\n", t.Status)
		fmt.Printf("  Priority:    %s (score %d)\n", t.Priority, t.PriorityScore)

		if t.Description != "" {
			fmt.Printf("  Description: %s\n", t.Description)
		}
		if t.CategoryName != "" {
			fmt.Printf("  Category:    %s\n", t.CategoryName)
		}
		if len(t.Tags) > 0 {
			fmt.Printf("  Tags:        %s\n", strings.Join(t.Tags, ", "))
		}
		if t.StartDate != nil {
			fmt.Printf("  Start:       %s\n", t.StartDate.Format("2006-01-02"))
		}
		if t.DueDate != nil {
			fmt.Printf("  Due:         %s\n", t.DueDate.Format("2006-01-02"))
		}
		if t.Year != nil && t.Week != nil && t.DayOfWeek != nil && t.StartTime != nil && t.EndTime != nil {
			fmt.Printf("  Slot:        %d-W%02d day %d %s-%s\n",
				*t.Year, *t.Week, *t.DayOfWeek,
				t.StartTime.Format("15:04"), t.EndTime.Format("15:04"))
			if t.HasConflict {
				fmt.Printf("  Conflict:    yes\n")
			}
		}
		if t.EstimatedMinutes != nil {
			fmt.Printf("  Estimated:   %d min\n", *t.EstimatedMinutes)
		}
		if t.ActualMinutes != nil {
			fmt.Printf("  Actual:      %d min\n", *t.ActualMinutes)
		}
		if t.CompletedAt != nil {
			fmt.Printf("  Completed:   %s\n", t.CompletedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("  Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04"))

		return nil
	},
}
