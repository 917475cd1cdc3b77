package cmd

import (
	"github.com/spf13/cobra"

	"armory/internal/logger"
)

// installCmd converges the machine toward the manifests: system packages,
// special installs, the Go toolchain, Go tools, cloned tools, and wordlists.
// Everything already in place is skipped, so re-running is always safe.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install everything the manifests declare",
	Run: func(cmd *cobra.Command, args []string) {
		in := newInstaller()
		if err := in.Install(); err != nil {
			fatal(err)
		}
		logger.Info("[INFO] Install complete\n")
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
