package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armory/internal/fault"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPackages(t *testing.T) {
	t.Run("parses OS, architectures, and package names", func(t *testing.T) {
		path := writeManifest(t, `
# system packages
Linux x86_64 amd64 nmap masscan

Darwin arm64 nmap
`)
		specs, err := LoadPackages(path)
		require.NoError(t, err)
		require.Len(t, specs, 2)
		assert.Equal(t, PackageSpec{OS: "Linux", Archs: []string{"x86_64", "amd64"}, Names: []string{"nmap", "masscan"}}, specs[0])
		assert.Equal(t, PackageSpec{OS: "Darwin", Archs: []string{"arm64"}, Names: []string{"nmap"}}, specs[1])
	})

	t.Run("line without architecture tokens matches nowhere", func(t *testing.T) {
		path := writeManifest(t, "Linux nmap\n")
		specs, err := LoadPackages(path)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Empty(t, specs[0].Archs)
		assert.False(t, specs[0].Matches("Linux", "x86_64"))
		assert.False(t, specs[0].Matches("Linux", "amd64"))
		assert.False(t, specs[0].Matches("Linux", ""))
	})

	t.Run("package named like an architecture is read as a filter", func(t *testing.T) {
		// Documented limitation of the greedy positional scan.
		path := writeManifest(t, "Linux x86_64 arm64 gdb\n")
		specs, err := LoadPackages(path)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Equal(t, []string{"x86_64", "arm64"}, specs[0].Archs)
		assert.Equal(t, []string{"gdb"}, specs[0].Names)
	})

	t.Run("missing file is a configuration fault", func(t *testing.T) {
		_, err := LoadPackages(filepath.Join(t.TempDir(), "absent.txt"))
		require.Error(t, err)
		kind, ok := fault.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, fault.Configuration, kind)
	})
}

func TestSpecMatches(t *testing.T) {
	spec := PackageSpec{OS: "Linux", Archs: []string{"x86_64", "amd64"}, Names: []string{"nmap"}}
	assert.True(t, spec.Matches("Linux", "x86_64"))
	assert.True(t, spec.Matches("Linux", "amd64"))
	assert.False(t, spec.Matches("Linux", "aarch64"))
	assert.False(t, spec.Matches("Darwin", "x86_64"))
}

func TestLoadSpecial(t *testing.T) {
	t.Run("keeps the install command as an argv list", func(t *testing.T) {
		path := writeManifest(t, "Linux x86_64 amd64 nxc pipx install netexec\n")
		specs, err := LoadSpecial(path)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Equal(t, "nxc", specs[0].Command)
		assert.Equal(t, []string{"pipx", "install", "netexec"}, specs[0].Argv)
		assert.Equal(t, []string{"x86_64", "amd64"}, specs[0].Archs)
	})

	t.Run("command without install text is a configuration fault", func(t *testing.T) {
		path := writeManifest(t, "Linux x86_64 nxc\n")
		_, err := LoadSpecial(path)
		require.Error(t, err)
		kind, ok := fault.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, fault.Configuration, kind)
	})
}

func TestLoadGoTools(t *testing.T) {
	t.Run("parses binary and module pairs", func(t *testing.T) {
		path := writeManifest(t, `
ffuf github.com/ffuf/ffuf/v2@latest
subfinder github.com/projectdiscovery/subfinder/v2/cmd/subfinder@latest
`)
		specs, err := LoadGoTools(path)
		require.NoError(t, err)
		require.Len(t, specs, 2)
		assert.Equal(t, GoToolSpec{Binary: "ffuf", Module: "github.com/ffuf/ffuf/v2@latest"}, specs[0])
	})

	t.Run("wrong token count is a configuration fault", func(t *testing.T) {
		path := writeManifest(t, "ffuf\n")
		_, err := LoadGoTools(path)
		assert.Error(t, err)
	})
}

func TestLoadRepos(t *testing.T) {
	t.Run("splits on the pipe and trims", func(t *testing.T) {
		path := writeManifest(t, "Responder | https://github.com/lgandx/Responder.git\n")
		specs, err := LoadRepos(path)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Equal(t, RepoSpec{Name: "Responder", URL: "https://github.com/lgandx/Responder.git"}, specs[0])
	})

	t.Run("line without a pipe is a configuration fault", func(t *testing.T) {
		path := writeManifest(t, "Responder\n")
		_, err := LoadRepos(path)
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("packages.txt", "Linux x86_64 nmap\n")
	write("special.txt", "Linux x86_64 nxc pipx install netexec\n")
	write("gotools.txt", "ffuf github.com/ffuf/ffuf/v2@latest\n")
	write("tools.txt", "Responder|https://github.com/lgandx/Responder.git\n")
	write("wordlists.txt", "SecLists|https://github.com/danielmiessler/SecLists.git\n")
	write("config.yaml", `config:
  packages_file: `+filepath.Join(dir, "packages.txt")+`
  special_file: `+filepath.Join(dir, "special.txt")+`
  gotools_file: `+filepath.Join(dir, "gotools.txt")+`
  tools_file: `+filepath.Join(dir, "tools.txt")+`
  wordlists_file: `+filepath.Join(dir, "wordlists.txt")+`
`)

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Packages, 1)
	assert.Len(t, cfg.Special, 1)
	assert.Len(t, cfg.GoTools, 1)
	assert.Len(t, cfg.Tools, 1)
	assert.Len(t, cfg.Wordlists, 1)

	t.Run("missing manifest is a configuration fault", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, "wordlists.txt")))
		_, err := Load(filepath.Join(dir, "config.yaml"))
		require.Error(t, err)
		kind, ok := fault.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, fault.Configuration, kind)
	})
}
