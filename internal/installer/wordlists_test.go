package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armory/internal/config"
	"armory/internal/testutil/fakerun"
)

func TestExpandWordlistDir(t *testing.T) {
	dir := t.TempDir()
	passwords := filepath.Join(dir, "Passwords")
	require.NoError(t, os.MkdirAll(passwords, 0755))
	writeGz(t, filepath.Join(passwords, "rockyou.txt.gz"), "letmein\n")
	writeTarGz(t, filepath.Join(dir, "web.tar.gz"), []tarEntry{{name: "common.txt", body: "admin\n"}})

	require.NoError(t, expandWordlistDir(dir))
	data, err := os.ReadFile(filepath.Join(passwords, "rockyou.txt"))
	require.NoError(t, err)
	assert.Equal(t, "letmein\n", string(data))
	data, err = os.ReadFile(filepath.Join(dir, "web", "common.txt"))
	require.NoError(t, err)
	assert.Equal(t, "admin\n", string(data))

	// Expanded files are never clobbered on a re-run, even when edited.
	require.NoError(t, os.WriteFile(filepath.Join(passwords, "rockyou.txt"), []byte("edited\n"), 0644))
	require.NoError(t, expandWordlistDir(dir))
	data, err = os.ReadFile(filepath.Join(passwords, "rockyou.txt"))
	require.NoError(t, err)
	assert.Equal(t, "edited\n", string(data))
}

func TestInstallWordlists(t *testing.T) {
	cfg := &config.Config{Wordlists: []config.RepoSpec{
		{Name: "SecLists", URL: "https://github.com/danielmiessler/SecLists.git"},
	}}
	r := &fakerun.Runner{}
	in := newTestInstaller(t, cfg, r)

	// The clone already exists, so the phase only expands payloads.
	dir := filepath.Join(in.Ctx.InstallHome, "SecLists")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Passwords"), 0755))
	writeGz(t, filepath.Join(dir, "Passwords", "rockyou.txt.gz"), "letmein\n")

	require.NoError(t, in.installWordlists())
	assert.Empty(t, r.Calls)
	assert.Empty(t, in.State.Wordlists)
	assert.FileExists(t, filepath.Join(dir, "Passwords", "rockyou.txt"))
}
