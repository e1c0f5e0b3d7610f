package admin

import (
	"github.com/spf13/cobra"
)

// Cmd is the admin command group
var Cmd = &cobra.Command{
	Use:   "admin",
	Short: "Administer the billing engine",
	Long:  `Pause billing, manage authorized pullers, and transfer ownership.`,
}

func init() {
	Cmd.AddCommand(pauseCmd)
	Cmd.AddCommand(unpauseCmd)
	Cmd.AddCommand(pullerCmd)
	Cmd.AddCommand(ownerCmd)
}
