// Package priority holds the priority engine command group.
package priority

import "github.com/spf13/cobra"

// Cmd is the priority command group.
var Cmd = &cobra.Command{
	Use:   "priority",
	Short: "Priority engine tools",
}

func init() {
	Cmd.AddCommand(recalcCmd)
}
