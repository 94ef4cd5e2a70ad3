package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/tasks/application/commands"
)

var (
	description string
	startDate   string
	dueDate     string
	tags        []string
	estimated   int
	energy      int
	focus       int
	categoryID  string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task with a title, a category and optional properties.
The priority score and tier are derived from the due date at creation.

Examples:
  planwise task create "Complete project report" --category <category-id>
  planwise task create "Review PR" --category <category-id> --due 2026-09-04
  planwise task create "Write docs" --category <category-id> --due 2026-09-10 --estimated 60 --tags docs,writing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		createTaskCmd := commands.CreateTaskCommand{
			UserID:      app.CurrentUserID,
			Title:       args[0],
			Description: description,
			Tags:        tags,
		}

		if startDate != "" {
			parsed, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("invalid start date format (use YYYY-MM-DD): %w", err)
			}
			createTaskCmd.StartDate = &parsed
		}
		if dueDate != "" {
			parsed, err := time.Parse("2006-01-02", dueDate)
			if err != nil {
				return fmt.Errorf("invalid due date format (use YYYY-MM-DD): %w", err)
			}
			createTaskCmd.DueDate = &parsed
		}
		if categoryID != "" {
			parsed, err := uuid.Parse(categoryID)
			if err != nil {
				return fmt.Errorf("invalid category ID: %w", err)
			}
			createTaskCmd.CategoryID = &parsed
		}
		if cmd.Flags().Changed("estimated") {
			createTaskCmd.EstimatedMinutes = &estimated
		}
		if cmd.Flags().Changed("energy") {
			createTaskCmd.EnergyLevel = &energy
		}
		if cmd.Flags().Changed("focus") {
			createTaskCmd.FocusLevel = &focus
		}

		ctx := cmd.Context()
		result, err := app.CreateTaskHandler.Handle(ctx, createTaskCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("Task created: %s\n", result.TaskID)
		fmt.Printf("  title:    %s\n", args[0])
		fmt.Printf("  priority: %s (score %d)\n", result.Priority, result.PriorityScore)
		if dueDate != "" {
			fmt.Printf("  due:      %s\n", dueDate)
		}
		if len(tags) > 0 {
			fmt.Printf("  tags:     %s\n", strings.Join(tags, ", "))
		}

		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&description, "description", "", "task description")
	createCmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	createCmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	createCmd.Flags().IntVar(&estimated, "estimated", 0, "estimated duration in minutes")
	createCmd.Flags().IntVar(&energy, "energy", 0, "energy level (1-5)")
	createCmd.Flags().IntVar(&focus, "focus", 0, "focus level (1-5)")
	createCmd.Flags().StringVar(&categoryID, "category", "", "category ID (required)")
	_ = createCmd.MarkFlagRequired("category")
}
