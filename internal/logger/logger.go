package logger

import (
	"github.com/fatih/color"
)

// Package-level printf-style printers, one per log level. Every component of
// armory logs through these so install and uninstall runs read the same way:
// green for progress and skip decisions, magenta for conditions worth
// noticing, red for the fatal condition that ends the run.

// Info logs progress and idempotent skips ("already installed", "alias
// present") in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs non-fatal oddities in bright magenta, e.g. a special package with
// no uninstall recipe or a run-ledger write failure.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs fatal conditions in red. The caller is expected to stop the run
// right after.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs probe-level detail in cyan when enabled, otherwise it is a no-op.
// Assigned by Init before any command body runs.
var Debug func(format string, a ...any)

// Init wires the Debug printer according to the --debug flag. The root
// command calls this from its PersistentPreRun hook, so every subcommand sees
// a fully initialized logger.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
