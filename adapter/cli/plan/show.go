package plan

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show plan details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetPlanHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		p, err := app.GetPlanHandler.Handle(ctx, queries.GetPlanQuery{PlanID: planID})
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}

		status := "inactive"
		if p.IsActive() {
			status = "active"
		}

		fmt.Printf("Plan #%d: %s\n", p.PlanID(), p.Name())
		fmt.Printf("  Status: %s\n", status)
		fmt.Printf("  Price: %d\n", p.Price())
		fmt.Printf("  Period: %s\n", p.BillingPeriod())
		fmt.Printf("  Subscribers: %d\n", p.CurrentSubscribers())
		if p.IsUnlimited() {
			fmt.Printf("  Capacity: unlimited\n")
		} else {
			fmt.Printf("  Capacity: %d\n", p.MaxSubscribers())
		}

		return nil
	},
}
