package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

var ownerCmd = &cobra.Command{
	Use:   "transfer-ownership [new-owner]",
	Short: "Transfer engine ownership",
	Long: `Hand the engine over to a new owner. The previous owner keeps no
standing permissions after the transfer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TransferOwnershipHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		err := app.TransferOwnershipHandler.Handle(ctx, commands.TransferOwnershipCommand{
			Caller:   app.Caller(),
			NewOwner: sharedDomain.NewIdentity(args[0]),
		})
		if err != nil {
			return fmt.Errorf("failed to transfer ownership: %w", err)
		}

		fmt.Printf("Ownership transferred to %s\n", args[0])
		return nil
	},
}
