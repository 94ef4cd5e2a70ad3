package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/tasks/application/commands"
)

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
	updatePriority    string
	updateDue         string
	updateStart       string
	updateTags        []string
	updateEstimated   int
	updateActual      int
	clearDue          bool
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Update the properties of an existing task. Changing the status or
the due date recomputes the priority score. A --priority value overrides
the tier until the next recomputation.

Examples:
  planwise task update abc123 --title "New title"
  planwise task update abc123 --status in_progress
  planwise task update abc123 --priority high
  planwise task update abc123 --due 2026-12-31
  planwise task update abc123 --clear-due`,
	Aliases: []string{"edit", "modify"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		changes := map[string]any{}

		if cmd.Flags().Changed("title") {
			changes[commands.FieldTitle] = updateTitle
		}
		if cmd.Flags().Changed("description") {
			changes[commands.FieldDescription] = updateDescription
		}
		if cmd.Flags().Changed("status") {
			changes[commands.FieldStatus] = updateStatus
		}
		if cmd.Flags().Changed("priority") {
			changes[commands.FieldPriority] = updatePriority
		}
		if cmd.Flags().Changed("tags") {
			changes[commands.FieldTags] = updateTags
		}
		if cmd.Flags().Changed("estimated") {
			changes[commands.FieldEstimatedMinutes] = &updateEstimated
		}
		if cmd.Flags().Changed("actual") {
			changes[commands.FieldActualMinutes] = &updateActual
		}
		if clearDue {
			changes[commands.FieldDueDate] = (*time.Time)(nil)
		} else if cmd.Flags().Changed("due") {
			due, err := time.Parse("2006-01-02", updateDue)
			if err != nil {
				return fmt.Errorf("invalid due date format (use YYYY-MM-DD): %w", err)
			}
			changes[commands.FieldDueDate] = &due
		}
		if cmd.Flags().Changed("start") {
			start, err := time.Parse("2006-01-02", updateStart)
			if err != nil {
				return fmt.Errorf("invalid start date format (use YYYY-MM-DD): %w", err)
			}
			changes[commands.FieldStartDate] = &start
		}

		if len(changes) == 0 {
			return fmt.Errorf("no updates specified - use flags like --title, --status, or --due")
		}

		updateTaskCmd := commands.UpdateTaskCommand{
			UserID:  app.CurrentUserID,
			TaskID:  taskID,
			Changes: changes,
		}

		ctx := cmd.Context()
		result, err := app.UpdateTaskHandler.Handle(ctx, updateTaskCmd)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		fmt.Printf("Task updated: %s\n", taskID)
		fmt.Printf("  fields:   %v\n", result.AppliedFields)
		fmt.Printf("  priority: %s (score %d)\n", result.Priority, result.PriorityScore)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "new status (todo, in_progress, done, archived)")
	updateCmd.Flags().StringVar(&updatePriority, "priority", "", "priority override (low, medium, high, urgent)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new due date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateStart, "start", "", "new start date (YYYY-MM-DD)")
	updateCmd.Flags().StringSliceVar(&updateTags, "tags", nil, "replacement tags")
	updateCmd.Flags().IntVar(&updateEstimated, "estimated", 0, "estimated duration in minutes")
	updateCmd.Flags().IntVar(&updateActual, "actual", 0, "actual duration in minutes")
	updateCmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
}
