package plan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the standard plan tiers",
	Long: `Create the Basic, Pro, and Enterprise tiers with a 30-day
billing period. Intended for fresh deployments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreatePlanHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		tiers := []struct {
			name  string
			price int64
		}{
			{"Basic", 1_000_000},
			{"Pro", 2_000_000},
			{"Enterprise", 3_000_000},
		}

		ctx := cmd.Context()
		for _, tier := range tiers {
			result, err := app.CreatePlanHandler.Handle(ctx, commands.CreatePlanCommand{
				Caller:        app.Caller(),
				Name:          tier.name,
				Price:         tier.price,
				BillingPeriod: 720 * time.Hour,
			})
			if err != nil {
				return fmt.Errorf("failed to create %s plan: %w", tier.name, err)
			}
			fmt.Printf("Plan created: #%d %s (%d)\n", result.PlanID, tier.name, tier.price)
		}

		return nil
	},
}
