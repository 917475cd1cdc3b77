package cmd

import (
	"github.com/spf13/cobra"

	"armory/internal/logger"
)

// uninstallCmd reverses a previous install run, consuming the same manifests
// plus the ledger that run wrote. Anything armory never recorded is left
// alone.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove everything a previous install run put on this machine",
	Run: func(cmd *cobra.Command, args []string) {
		in := newInstaller()
		if err := in.Uninstall(); err != nil {
			fatal(err)
		}
		logger.Info("[INFO] Uninstall complete\n")
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
