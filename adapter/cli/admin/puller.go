package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dorakingx/subscryption/adapter/cli"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

var pullerCmd = &cobra.Command{
	Use:   "puller",
	Short: "Manage authorized payment pullers",
}

var pullerGrantCmd = &cobra.Command{
	Use:   "grant [identity]",
	Short: "Authorize an identity to collect payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authorizePuller(cmd, args[0], true)
	},
}

var pullerRevokeCmd = &cobra.Command{
	Use:   "revoke [identity]",
	Short: "Revoke an identity's collection authorization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authorizePuller(cmd, args[0], false)
	},
}

func authorizePuller(cmd *cobra.Command, identity string, allowed bool) error {
	app := cli.GetApp()
	if app == nil || app.AuthorizePullerHandler == nil {
		return fmt.Errorf("application not initialized - database connection required")
	}

	ctx := cmd.Context()
	err := app.AuthorizePullerHandler.Handle(ctx, commands.AuthorizePullerCommand{
		Caller:   app.Caller(),
		Identity: sharedDomain.NewIdentity(identity),
		Allowed:  allowed,
	})
	if err != nil {
		return fmt.Errorf("failed to update puller authorization: %w", err)
	}

	if allowed {
		fmt.Printf("Puller authorized: %s\n", identity)
	} else {
		fmt.Printf("Puller revoked: %s\n", identity)
	}
	return nil
}

func init() {
	pullerCmd.AddCommand(pullerGrantCmd)
	pullerCmd.AddCommand(pullerRevokeCmd)
}
