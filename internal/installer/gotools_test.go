package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armory/internal/config"
	"armory/internal/state"
	"armory/internal/testutil/fakerun"
)

func TestInstallGoTools(t *testing.T) {
	cfg := &config.Config{GoTools: []config.GoToolSpec{
		{Binary: "ffuf", Module: "github.com/ffuf/ffuf/v2@latest"},
	}}

	t.Run("missing binary is built and recorded", func(t *testing.T) {
		r := &fakerun.Runner{Paths: map[string]string{"go": "/usr/bin/go"}}
		in := newTestInstaller(t, cfg, r)

		require.NoError(t, in.installGoTools())
		require.Len(t, r.Calls, 1)
		assert.Contains(t, r.Calls[0].Name, "go")
		assert.Equal(t, []string{"install", "github.com/ffuf/ffuf/v2@latest"}, r.Calls[0].Args)
		rec := in.State.GoTools["ffuf"]
		assert.Equal(t, "github.com/ffuf/ffuf/v2@latest", rec.Module)
		assert.Equal(t, filepath.Join(in.Ctx.GoBin, "ffuf"), rec.Path)
	})

	t.Run("binary in the workspace bin is skipped", func(t *testing.T) {
		r := &fakerun.Runner{Paths: map[string]string{"go": "/usr/bin/go"}}
		in := newTestInstaller(t, cfg, r)
		require.NoError(t, os.MkdirAll(in.Ctx.GoBin, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(in.Ctx.GoBin, "ffuf"), []byte("elf"), 0755))

		require.NoError(t, in.installGoTools())
		assert.Empty(t, r.Calls)
		assert.Empty(t, in.State.GoTools, "a skipped tool must not be claimed")
	})

	t.Run("binary elsewhere on PATH is skipped", func(t *testing.T) {
		r := &fakerun.Runner{Paths: map[string]string{
			"go":   "/usr/bin/go",
			"ffuf": "/usr/bin/ffuf",
		}}
		in := newTestInstaller(t, cfg, r)

		require.NoError(t, in.installGoTools())
		assert.Empty(t, r.Calls)
		assert.Empty(t, in.State.GoTools)
	})
}

func TestProviderConfig(t *testing.T) {
	cfg := &config.Config{GoTools: []config.GoToolSpec{
		{Binary: "subfinder", Module: "github.com/projectdiscovery/subfinder/v2/cmd/subfinder@latest"},
	}}

	t.Run("stock config is written even when the install is skipped", func(t *testing.T) {
		r := &fakerun.Runner{Paths: map[string]string{"subfinder": "/usr/bin/subfinder"}}
		in := newTestInstaller(t, cfg, r)

		require.NoError(t, in.installGoTools())
		path := filepath.Join(in.Ctx.Home, ".config", "subfinder", "provider-config.yaml")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "securitytrails:")
		assert.Contains(t, in.State.Files, path)
	})

	t.Run("an existing config is left untouched", func(t *testing.T) {
		r := &fakerun.Runner{Paths: map[string]string{"subfinder": "/usr/bin/subfinder"}}
		in := newTestInstaller(t, cfg, r)
		path := filepath.Join(in.Ctx.Home, ".config", "subfinder", "provider-config.yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("keys: mine\n"), 0644))

		require.NoError(t, in.installGoTools())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "keys: mine\n", string(data))
		assert.Empty(t, in.State.Files, "files armory did not write are not recorded")
	})
}

func TestRemoveGoTools(t *testing.T) {
	cfg := &config.Config{GoTools: []config.GoToolSpec{
		{Binary: "ffuf", Module: "github.com/ffuf/ffuf/v2@latest"},
	}}

	t.Run("unrecorded binary stays", func(t *testing.T) {
		in := newTestInstaller(t, cfg, &fakerun.Runner{})
		target := filepath.Join(in.Ctx.GoBin, "ffuf")
		require.NoError(t, os.MkdirAll(in.Ctx.GoBin, 0755))
		require.NoError(t, os.WriteFile(target, []byte("elf"), 0755))

		require.NoError(t, in.removeGoTools())
		assert.FileExists(t, target)
	})

	t.Run("recorded binary is removed", func(t *testing.T) {
		in := newTestInstaller(t, cfg, &fakerun.Runner{})
		target := filepath.Join(in.Ctx.GoBin, "ffuf")
		require.NoError(t, os.MkdirAll(in.Ctx.GoBin, 0755))
		require.NoError(t, os.WriteFile(target, []byte("elf"), 0755))
		in.State.GoTools["ffuf"] = state.GoToolState{Module: "github.com/ffuf/ffuf/v2@latest"}

		require.NoError(t, in.removeGoTools())
		assert.NoFileExists(t, target)
		assert.NotContains(t, in.State.GoTools, "ffuf")
	})
}
