package subscription

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [plan-id]",
	Short: "Cancel a subscription",
	Long: `Cancel the current account's subscription to a plan. No refund
is issued for the remaining period.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		err = app.CancelHandler.Handle(ctx, commands.CancelSubscriptionCommand{
			Subscriber: app.Caller(),
			PlanID:     planID,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel: %w", err)
		}

		fmt.Printf("Subscription to plan %d cancelled.\n", planID)
		return nil
	},
}
