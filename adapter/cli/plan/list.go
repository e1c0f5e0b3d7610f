package plan

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List plans",
	Long:    `List every plan in the catalog with price, cadence, and occupancy.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListPlansHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		plans, err := app.ListPlansHandler.Handle(ctx)
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}

		if len(plans) == 0 {
			fmt.Println("No plans found.")
			return nil
		}

		fmt.Printf("Plans (%d):\n", len(plans))
		fmt.Println(strings.Repeat("-", 60))

		for _, p := range plans {
			statusIcon := "[x]"
			if p.IsActive() {
				statusIcon = "[ ]"
			}

			capacity := fmt.Sprintf("%d subscribed", p.CurrentSubscribers())
			if !p.IsUnlimited() {
				capacity = fmt.Sprintf("%d/%d", p.CurrentSubscribers(), p.MaxSubscribers())
			}

			fmt.Printf("%s #%d %s\n", statusIcon, p.PlanID(), p.Name())
			fmt.Printf("   Price: %d\n", p.Price())
			fmt.Printf("   Period: %s\n", p.BillingPeriod())
			fmt.Printf("   Capacity: %s\n", capacity)
			fmt.Println()
		}

		return nil
	},
}
