// Package plan holds the weekly plan command group.
package plan

import (
	"time"

	"github.com/spf13/cobra"
)

// Cmd is the plan command group
var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage weekly plans",
	Long:  `Start, view, fill, and close weekly plans.`,
}

// currentWeek returns the ISO year and week for now, used as flag defaults.
func currentWeek() (int, int) {
	return time.Now().UTC().ISOWeek()
}

func init() {
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(closeCmd)
}
