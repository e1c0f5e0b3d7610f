package plan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
)

var (
	period         time.Duration
	maxSubscribers int64
)

var createCmd = &cobra.Command{
	Use:   "create [name] [price]",
	Short: "Create a new plan",
	Long: `Create a new subscription plan. Price is in the smallest token unit.

Examples:
  subscryption plan create "Basic" 1000000
  subscryption plan create "Pro" 2000000 --period 720h
  subscryption plan create "Team" 5000000 --max 100`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreatePlanHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		price, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[1], err)
		}

		createCmd := commands.CreatePlanCommand{
			Caller:         app.Caller(),
			Name:           args[0],
			Price:          price,
			BillingPeriod:  period,
			MaxSubscribers: maxSubscribers,
		}

		ctx := cmd.Context()
		result, err := app.CreatePlanHandler.Handle(ctx, createCmd)
		if err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}

		fmt.Printf("Plan created: %d\n", result.PlanID)
		fmt.Printf("  name: %s\n", args[0])
		fmt.Printf("  price: %d\n", price)
		fmt.Printf("  period: %s\n", period)
		if maxSubscribers > 0 {
			fmt.Printf("  max subscribers: %d\n", maxSubscribers)
		}

		return nil
	},
}

func init() {
	createCmd.Flags().DurationVarP(&period, "period", "p", 720*time.Hour, "billing period between charges")
	createCmd.Flags().Int64VarP(&maxSubscribers, "max", "m", 0, "max subscribers (0 = unlimited)")
}
