package subscription

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
)

var subscribeCmd = &cobra.Command{
	Use:   "create [plan-id]",
	Short: "Subscribe to a plan",
	Long: `Subscribe the current account to a plan. The first billing
period is charged upfront.

Examples:
  subscryption subscription create 1
  subscryption subscription create 2 --account acct-alice`,
	Aliases: []string{"subscribe"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SubscribeHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		result, err := app.SubscribeHandler.Handle(ctx, commands.SubscribeCommand{
			Subscriber: app.Caller(),
			PlanID:     planID,
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}

		fmt.Printf("Subscribed to plan %d\n", planID)
		fmt.Printf("  charged: %d\n", result.Charged)
		fmt.Printf("  next payment due: %s\n", result.NextPaymentDue.Format("2006-01-02 15:04:05 MST"))

		return nil
	},
}
