package subscription

import (
	"github.com/spf13/cobra"
)

// Cmd is the subscription command group
var Cmd = &cobra.Command{
	Use:     "subscription",
	Short:   "Manage subscriptions",
	Long:    `Enroll in plans, cancel, collect renewals, and check status.`,
	Aliases: []string{"sub"},
}

func init() {
	Cmd.AddCommand(subscribeCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(collectCmd)
	Cmd.AddCommand(statusCmd)
}
