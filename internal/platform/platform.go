// Package platform resolves the host facts every other component consumes:
// OS family, machine architecture, shell, profile path, and privilege mode.
// Detection happens once per run; the resulting Context is passed around by
// value of its pointer and never mutated afterward.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"armory/internal/fault"
	"armory/internal/logger"
)

// Shell kinds recognized from $SHELL. Anything else falls back to the OS
// default convention.
const (
	ShellZsh  = "zsh"
	ShellBash = "bash"
)

// Context is the immutable environment record for one run.
type Context struct {
	// OS is the host OS family in manifest vocabulary: "Linux", "Darwin",
	// "Windows". Unknown families are title-cased verbatim and simply match
	// no manifest lines.
	OS string
	// Arch is the machine architecture in uname vocabulary ("x86_64",
	// "aarch64", "arm64", "i686", ...), matched against manifest
	// architecture literals and mapped by the toolchain installer.
	Arch string
	// Shell is the active shell kind, ShellZsh or ShellBash.
	Shell string
	// ProfilePath is the shell startup file receiving PATH exports, aliases
	// and completion sources.
	ProfilePath string
	// Home is the invoking user's home directory (root's when running as
	// root).
	Home string
	// InstallHome is where tool and wordlist repositories are cloned,
	// <home>/tools.
	InstallHome string
	// GoBin is the toolchain workspace bin directory, <home>/go/bin.
	GoBin string
	// Sudo is the privilege elevation command, "sudo" for non-root runs and
	// "" when already root.
	Sudo string
}

// Root reports whether the run already holds root privileges.
func (c *Context) Root() bool {
	return c.Sudo == ""
}

// Detect resolves the Context from the live host. As a side effect it creates
// the profile file if it does not exist yet, so later profile mutation always
// has a file to work with.
func Detect() (*Context, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fault.Envf("resolve home directory: %w", err)
	}
	ctx := contextFor(runtime.GOOS, runtime.GOARCH, os.Getenv("SHELL"), os.Geteuid(), home)
	logger.Debug("[DEBUG] environment: os=%s arch=%s shell=%s profile=%s sudo=%q\n",
		ctx.OS, ctx.Arch, ctx.Shell, ctx.ProfilePath, ctx.Sudo)
	if err := ensureProfile(ctx.ProfilePath); err != nil {
		return nil, err
	}
	return ctx, nil
}

// contextFor derives a Context from explicit host facts. Split out from
// Detect so the derivation rules are testable with fixed inputs.
func contextFor(goos, goarch, shellEnv string, euid int, home string) *Context {
	shell := shellKind(shellEnv, goos)
	ctx := &Context{
		OS:          osFamily(goos),
		Arch:        unameArch(goos, goarch),
		Shell:       shell,
		ProfilePath: profilePath(home, shell),
		Home:        home,
		InstallHome: filepath.Join(home, "tools"),
		GoBin:       filepath.Join(home, "go", "bin"),
	}
	if euid != 0 {
		ctx.Sudo = "sudo"
	}
	return ctx
}

// osFamily maps the build OS onto the family names used in manifests.
func osFamily(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	}
	if goos == "" {
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

// unameArch maps the build architecture onto the `uname -m` vocabulary the
// manifests are written in. Darwin reports arm64 where Linux reports aarch64,
// which is why the toolchain installer accepts both spellings.
func unameArch(goos, goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		if goos == "darwin" {
			return "arm64"
		}
		return "aarch64"
	case "386":
		return "i686"
	case "arm":
		return "armv7l"
	}
	return goarch
}

// shellKind reads the shell from a $SHELL value. Unknown or empty values fall
// back to the OS default rather than failing: zsh on Darwin, bash elsewhere.
func shellKind(shellEnv, goos string) string {
	switch {
	case strings.Contains(shellEnv, ShellZsh):
		return ShellZsh
	case strings.Contains(shellEnv, ShellBash):
		return ShellBash
	case goos == "darwin":
		return ShellZsh
	}
	return ShellBash
}

// profilePath picks the startup file for the shell kind.
func profilePath(home, shell string) string {
	name := ".bashrc"
	if shell == ShellZsh {
		name = ".zshrc"
	}
	return filepath.Join(home, name)
}

// ensureProfile creates the profile file when absent. Existing files are left
// untouched, so repeated runs are no-ops here.
func ensureProfile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fault.Envf("stat profile %s: %w", path, err)
	}
	logger.Info("[INFO] Creating shell profile %s\n", path)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fault.Envf("create profile %s: %w", path, err)
	}
	return nil
}
