package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the billing engine",
	Long: `Pause new enrollments and renewal collection. Cancellation stays
available so subscribers are never locked in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPaused(cmd, true)
	},
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume the billing engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPaused(cmd, false)
	},
}

func setPaused(cmd *cobra.Command, paused bool) error {
	app := cli.GetApp()
	if app == nil || app.SetPausedHandler == nil {
		return fmt.Errorf("application not initialized - database connection required")
	}

	ctx := cmd.Context()
	err := app.SetPausedHandler.Handle(ctx, commands.SetPausedCommand{
		Caller: app.Caller(),
		Paused: paused,
	})
	if err != nil {
		return fmt.Errorf("failed to update pause state: %w", err)
	}

	if paused {
		fmt.Println("Billing engine paused.")
	} else {
		fmt.Println("Billing engine resumed.")
	}
	return nil
}
