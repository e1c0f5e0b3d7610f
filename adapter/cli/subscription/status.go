package subscription

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	"github.com/dorakingx/subscryption/internal/billing/domain"
)

var showRecord bool

var statusCmd = &cobra.Command{
	Use:   "status [plan-id]",
	Short: "Check subscription status",
	Long: `Check whether the current account holds an active subscription
to a plan. With --record the latest subscription record is shown,
including terminal ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.IsSubscribedHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", args[0], err)
		}

		subscriber := app.Caller()
		ctx := cmd.Context()

		active, err := app.IsSubscribedHandler.Handle(ctx, queries.IsSubscribedQuery{
			Subscriber: subscriber,
			PlanID:     planID,
		})
		if err != nil {
			return fmt.Errorf("failed to check status: %w", err)
		}

		if active {
			fmt.Printf("%s is subscribed to plan %d\n", subscriber, planID)
		} else {
			fmt.Printf("%s is not subscribed to plan %d\n", subscriber, planID)
		}

		if !showRecord {
			return nil
		}

		sub, err := app.GetSubscriptionHandler.Handle(ctx, queries.GetSubscriptionQuery{
			Subscriber: subscriber,
			PlanID:     planID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotSubscribed) {
				fmt.Println("No subscription record found.")
				return nil
			}
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		fmt.Printf("  status: %s\n", sub.Status())
		fmt.Printf("  started: %s\n", sub.StartedAt().Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("  last payment: %s\n", sub.LastPaymentAt().Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("  next payment due: %s\n", sub.NextPaymentDue().Format("2006-01-02 15:04:05 MST"))

		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&showRecord, "record", false, "show the latest subscription record")
}
