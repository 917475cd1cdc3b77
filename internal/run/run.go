// Package run is the single seam through which armory spawns external
// commands: package managers, git, pip, the Go toolchain, setup scripts.
// Components take the Runner interface so tests can substitute a recording
// fake and assert exactly which commands a phase issued.
package run

import (
	"os"
	"os/exec"
	"strings"

	"armory/internal/logger"
)

// Runner executes external commands synchronously.
type Runner interface {
	// Run executes the command with stdio attached to the user's terminal.
	Run(name string, args ...string) error
	// Elevated runs the command through the privilege elevation command when
	// one is configured, and directly when the run already holds root.
	Elevated(name string, args ...string) error
	// Output executes the command and returns its combined stdout+stderr.
	Output(name string, args ...string) (string, error)
	// LookPath resolves a command name against PATH.
	LookPath(file string) (string, error)
}

// Exec is the real Runner backed by os/exec.
type Exec struct {
	// Sudo is the elevation command prepended by Elevated, typically "sudo".
	// Empty means the process is already privileged.
	Sudo string
}

// NewExec returns a Runner that elevates through the given command ("" for
// none).
func NewExec(sudo string) *Exec {
	return &Exec{Sudo: sudo}
}

func (e *Exec) Run(name string, args ...string) error {
	logger.Debug("[DEBUG] exec: %s\n", commandLine(name, args))
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (e *Exec) Elevated(name string, args ...string) error {
	if e.Sudo == "" {
		return e.Run(name, args...)
	}
	return e.Run(e.Sudo, append([]string{name}, args...)...)
}

func (e *Exec) Output(name string, args ...string) (string, error) {
	logger.Debug("[DEBUG] exec (capture): %s\n", commandLine(name, args))
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

func (e *Exec) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
