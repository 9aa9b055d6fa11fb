package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ycensure",
	Short: "Reconcile Yandex Cloud compute instances via the yc CLI",
	Long: `ycensure ensures that named Yandex Cloud compute instances exist with a
declared configuration. The yc CLI is the only channel to the provider:
credentials and profiles are whatever yc is configured with on this host.

Each invocation is one reconciliation pass and is idempotent: a second run
with the same inputs reports changed=false and performs no action.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
