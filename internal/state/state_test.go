package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armory/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init(false)
	os.Exit(m.Run())
}

func TestLoadMissingFileYieldsEmptyLedger(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NotNil(t, st)
	assert.NotNil(t, st.Packages)
	assert.NotNil(t, st.Special)
	assert.NotNil(t, st.GoTools)
	assert.NotNil(t, st.Tools)
	assert.NotNil(t, st.Wordlists)
	assert.Nil(t, st.Toolchain)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := Load(path)
	st.Packages["nmap"] = PackageState{Manager: "apt"}
	st.Special["nxc"] = SpecialState{Argv: []string{"pipx", "install", "netexec"}}
	st.Toolchain = &ToolchainState{Version: "1.24.5", InstallDir: "/usr/local/go"}
	st.GoTools["ffuf"] = GoToolState{Module: "github.com/ffuf/ffuf/v2@latest", Path: "/home/op/go/bin/ffuf"}
	st.Tools["Responder"] = CloneState{Path: "/home/op/tools/Responder"}
	st.AddFile("/home/op/.config/subfinder/provider-config.yaml")
	Save(path, st)

	got := Load(path)
	assert.Equal(t, st, got)
}

func TestCorruptLedgerLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	st := Load(path)
	assert.Empty(t, st.Packages)
	assert.Nil(t, st.Toolchain)
}

func TestFileListDeduplicates(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "state.json"))
	st.AddFile("/a")
	st.AddFile("/a")
	st.AddFile("/b")
	assert.Equal(t, []string{"/a", "/b"}, st.Files)

	st.RemoveFile("/a")
	assert.Equal(t, []string{"/b"}, st.Files)
	st.RemoveFile("/missing")
	assert.Equal(t, []string{"/b"}, st.Files)
}
