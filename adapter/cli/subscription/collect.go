package subscription

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

var collectCmd = &cobra.Command{
	Use:   "collect [subscriber] [plan-id]",
	Short: "Collect a due renewal payment",
	Long: `Pull the renewal charge for a due subscription. The caller must
be the engine owner or an authorized puller.

A failed pull expires the subscription on the spot; the expiry is
recorded even though the command reports the payment failure.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CollectPaymentHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		planID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", args[1], err)
		}

		ctx := cmd.Context()
		result, err := app.CollectPaymentHandler.Handle(ctx, commands.CollectPaymentCommand{
			Caller:     app.Caller(),
			Subscriber: sharedDomain.NewIdentity(args[0]),
			PlanID:     planID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrPaymentFailed) && result != nil && result.Expired {
				fmt.Printf("Payment failed; subscription to plan %d expired.\n", planID)
			}
			return fmt.Errorf("failed to collect payment: %w", err)
		}

		fmt.Printf("Payment collected from %s for plan %d\n", args[0], planID)
		fmt.Printf("  amount: %d\n", result.Amount)
		fmt.Printf("  next payment due: %s\n", result.NextPaymentDue.Format("2006-01-02 15:04:05 MST"))

		return nil
	},
}
