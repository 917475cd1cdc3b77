package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"armory/internal/config"
	"armory/internal/installer"
	"armory/internal/logger"
	"armory/internal/platform"
)

// debug indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath holds the path to the main configuration YAML file.
// It's passed via the `--config` or `-c` flag.
var configPath string

// rootCmd is the base command for the CLI tool `armory`.
// It sets up the root-level CLI structure and provides global flags.
var rootCmd = &cobra.Command{
	Use:   "armory",
	Short: "Pentest machine provisioning tool",

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute registers global flags and runs the selected subcommand.
// It's the entry point for the CLI when invoked by the user.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newInstaller loads the configuration, detects the platform, and wires up
// the installer. Any failure here is fatal.
func newInstaller() *installer.Installer {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	ctx, err := platform.Detect()
	if err != nil {
		fatal(err)
	}
	in, err := installer.New(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	return in
}

// fatal reports an error and aborts the run with exit code 1.
func fatal(err error) {
	logger.Error("[ERROR] %v\n", err)
	os.Exit(1)
}
