package main

import (
	"armory/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// The armory project is a pentest workstation provisioning tool that:
//   - Reads a YAML configuration file pointing at plain-text manifests of system
//     packages, special installs, Go tools, git-hosted tools, and wordlists
//   - Installs system packages through the OS-native package manager, filtered by
//     the detected OS family and architecture
//   - Installs and keeps current a Go toolchain under /usr/local/go, discovering
//     the latest release from the upstream download index
//   - Clones declared tool and wordlist repositories under the install home,
//     runs each tool's setup (requirements files, setup scripts), and derives
//     shell aliases for their entry scripts
//   - Maintains all PATH exports, aliases, and completion sources inside one
//     managed block of the user's shell profile, regenerated as a whole so
//     repeated runs never accumulate duplicate lines
//   - Records everything it changes in a JSON ledger so uninstall removes only
//     what armory itself put on the machine, never pre-existing user state
//
// Error handling strategy:
//   - Every probe-before-mutate action is independently idempotent, so the run
//     is fail-fast: the first fatal condition aborts with exit code 1, and
//     re-invoking the run resumes from wherever it left off
//   - Non-fatal conditions (already installed, alias already present, no entry
//     script found) are logged and skipped without interrupting later entries
//
// Integration points:
//   - Drives the OS package manager, pipx, pip3, git, and the Go toolchain as
//     external commands rather than reimplementing them
//   - Supports zsh and bash by detecting the user's shell and editing the
//     matching profile file
//   - Downloads via curl or wget when available, with a native HTTP fallback
func main() {
	cmd.Execute()
}
