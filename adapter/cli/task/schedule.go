package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minhle/planwise/adapter/cli"
	"github.com/minhle/planwise/internal/planner/application/commands"
)

var (
	slotYear  int
	slotWeek  int
	slotDay   int
	slotStart string
	slotEnd   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [task-id]",
	Short: "Schedule a task into a weekly time slot",
	Long: `Place a task into a time slot identified by year, week, day of
week (1 = Monday .. 7 = Sunday), and a start/end clock time. Overlaps
with other tasks in the same day are flagged, not rejected.

Examples:
  planwise task schedule abc123 --year 2026 --week 36 --day 2 --from 09:00 --to 10:30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		scheduleTaskCmd := commands.ScheduleTaskCommand{
			UserID:     app.CurrentUserID,
			TaskID:     taskID,
			Year:       slotYear,
			Week:       slotWeek,
			DayOfWeek:  slotDay,
			StartClock: slotStart,
			EndClock:   slotEnd,
		}

		ctx := cmd.Context()
		result, err := app.ScheduleTaskHandler.Handle(ctx, scheduleTaskCmd)
		if err != nil {
			return fmt.Errorf("failed to schedule task: %w", err)
		}

		fmt.Printf("Task scheduled: %s\n", taskID)
		fmt.Printf("  slot: %d-W%02d day %d %s-%s\n", slotYear, slotWeek, slotDay, slotStart, slotEnd)
		if result.HasConflict {
			fmt.Println("  warning: slot overlaps another scheduled task")
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().IntVar(&slotYear, "year", 0, "slot year")
	scheduleCmd.Flags().IntVar(&slotWeek, "week", 0, "week number (1-53)")
	scheduleCmd.Flags().IntVar(&slotDay, "day", 0, "day of week (1 = Monday .. 7 = Sunday)")
	scheduleCmd.Flags().StringVar(&slotStart, "from", "", "start time (HH:MM)")
	scheduleCmd.Flags().StringVar(&slotEnd, "to", "", "end time (HH:MM)")

	_ = scheduleCmd.MarkFlagRequired("year")
	_ = scheduleCmd.MarkFlagRequired("week")
	_ = scheduleCmd.MarkFlagRequired("day")
	_ = scheduleCmd.MarkFlagRequired("from")
	_ = scheduleCmd.MarkFlagRequired("to")
}
