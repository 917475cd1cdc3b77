package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFor(t *testing.T) {
	t.Run("linux amd64 non-root", func(t *testing.T) {
		ctx := contextFor("linux", "amd64", "/usr/bin/bash", 1000, "/home/op")
		assert.Equal(t, "Linux", ctx.OS)
		assert.Equal(t, "x86_64", ctx.Arch)
		assert.Equal(t, ShellBash, ctx.Shell)
		assert.Equal(t, "/home/op/.bashrc", ctx.ProfilePath)
		assert.Equal(t, "/home/op/tools", ctx.InstallHome)
		assert.Equal(t, "/home/op/go/bin", ctx.GoBin)
		assert.Equal(t, "sudo", ctx.Sudo)
		assert.False(t, ctx.Root())
	})

	t.Run("root runs without sudo", func(t *testing.T) {
		ctx := contextFor("linux", "arm64", "/bin/zsh", 0, "/root")
		assert.Empty(t, ctx.Sudo)
		assert.True(t, ctx.Root())
		assert.Equal(t, "aarch64", ctx.Arch)
		assert.Equal(t, "/root/.zshrc", ctx.ProfilePath)
	})
}

func TestOSFamily(t *testing.T) {
	assert.Equal(t, "Linux", osFamily("linux"))
	assert.Equal(t, "Darwin", osFamily("darwin"))
	assert.Equal(t, "Windows", osFamily("windows"))
	assert.Equal(t, "Freebsd", osFamily("freebsd"))
	assert.Equal(t, "", osFamily(""))
}

func TestUnameArch(t *testing.T) {
	assert.Equal(t, "x86_64", unameArch("linux", "amd64"))
	assert.Equal(t, "x86_64", unameArch("darwin", "amd64"))
	// The two spellings of 64-bit ARM: uname says aarch64 on Linux but
	// arm64 on macOS.
	assert.Equal(t, "aarch64", unameArch("linux", "arm64"))
	assert.Equal(t, "arm64", unameArch("darwin", "arm64"))
	assert.Equal(t, "i686", unameArch("linux", "386"))
	assert.Equal(t, "armv7l", unameArch("linux", "arm"))
	assert.Equal(t, "riscv64", unameArch("linux", "riscv64"))
}

func TestShellKind(t *testing.T) {
	assert.Equal(t, ShellZsh, shellKind("/bin/zsh", "linux"))
	assert.Equal(t, ShellBash, shellKind("/usr/bin/bash", "darwin"))
	assert.Equal(t, ShellZsh, shellKind("", "darwin"))
	assert.Equal(t, ShellBash, shellKind("", "linux"))
	assert.Equal(t, ShellBash, shellKind("/usr/bin/fish", "linux"))
}

func TestEnsureProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bashrc")

	require.NoError(t, ensureProfile(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	// An existing profile is never touched.
	require.NoError(t, os.WriteFile(path, []byte("export EDITOR=vim\n"), 0644))
	require.NoError(t, ensureProfile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n", string(raw))
}
