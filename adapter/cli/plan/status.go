package plan

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
)

var activateCmd = &cobra.Command{
	Use:   "activate [plan-id]",
	Short: "Reopen a plan for new enrollments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPlanStatus(cmd, args[0], true)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate [plan-id]",
	Short: "Close a plan to new enrollments",
	Long: `Close a plan to new enrollments.

Existing subscriptions keep billing on their cadence; only new
subscribe calls are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPlanStatus(cmd, args[0], false)
	},
}

func setPlanStatus(cmd *cobra.Command, rawID string, active bool) error {
	app := cli.GetApp()
	if app == nil || app.UpdatePlanStatusHandler == nil {
		return fmt.Errorf("application not initialized - database connection required")
	}

	planID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid plan id %q: %w", rawID, err)
	}

	ctx := cmd.Context()
	err = app.UpdatePlanStatusHandler.Handle(ctx, commands.UpdatePlanStatusCommand{
		Caller: app.Caller(),
		PlanID: planID,
		Active: active,
	})
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}

	if active {
		fmt.Printf("Plan %d activated.\n", planID)
	} else {
		fmt.Printf("Plan %d deactivated.\n", planID)
	}
	return nil
}
