// Package priority groups the scoring engine commands.
package priority

import "github.com/spf13/cobra"

// Cmd is the priority command group.
var Cmd = &cobra.Command{
	Use:   "priority",
	Short: "Task priority scoring tools",
}

func init() {
	Cmd.AddCommand(recalcCmd)
	Cmd.AddCommand(backfillCmd)
}
