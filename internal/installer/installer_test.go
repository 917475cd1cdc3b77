package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"armory/internal/config"
	"armory/internal/logger"
	"armory/internal/platform"
	"armory/internal/profile"
	"armory/internal/state"
	"armory/internal/testutil/fakerun"
)

func TestMain(m *testing.M) {
	logger.Init(false)
	os.Exit(m.Run())
}

// newTestInstaller wires an Installer against a scripted runner and a fresh
// temporary home, posing as a non-root Linux x86_64 host with bash.
func newTestInstaller(t *testing.T, cfg *config.Config, r *fakerun.Runner) *Installer {
	t.Helper()
	home := t.TempDir()
	profilePath := filepath.Join(home, ".bashrc")
	require.NoError(t, os.WriteFile(profilePath, nil, 0644))
	prof, err := profile.Open(profilePath)
	require.NoError(t, err)

	ctx := &platform.Context{
		OS:          "Linux",
		Arch:        "x86_64",
		Shell:       platform.ShellBash,
		ProfilePath: profilePath,
		Home:        home,
		InstallHome: filepath.Join(home, "tools"),
		GoBin:       filepath.Join(home, "go", "bin"),
		Sudo:        "sudo",
	}
	statePath := state.DefaultPath(home)
	return &Installer{
		Ctx:       ctx,
		Run:       r,
		Config:    cfg,
		State:     state.Load(statePath),
		Profile:   prof,
		StatePath: statePath,
	}
}
