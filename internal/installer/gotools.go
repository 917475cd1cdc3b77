package installer

import (
	"os"
	"path/filepath"

	"armory/internal/fault"
	"armory/internal/logger"
	"armory/internal/state"
)

// defaultProviderConfig is the stock subfinder provider configuration written
// when none exists: every source present, no keys filled in.
const defaultProviderConfig = `# subfinder provider configuration
# Add API keys below to enable the corresponding sources.
binaryedge: []
bufferover: []
censys: []
certspotter: []
chaos: []
github: []
intelx: []
passivetotal: []
securitytrails: []
shodan: []
virustotal: []
zoomeyeapi: []
`

// installGoTools converges the toolchain-tools manifest: every declared
// binary missing from both the workspace bin directory and PATH is built with
// `go install`, using the managed toolchain when present.
func (in *Installer) installGoTools() error {
	for _, tool := range in.Config.GoTools {
		target := filepath.Join(in.Ctx.GoBin, tool.Binary)
		switch {
		case fileExists(target):
			logger.Info("[INFO] Tool %s already in %s\n", tool.Binary, in.Ctx.GoBin)
		case in.onPath(tool.Binary):
			logger.Info("[INFO] Tool %s already on PATH\n", tool.Binary)
		default:
			goBin, err := in.goBinary()
			if err != nil {
				return err
			}
			logger.Info("[INFO] Installing %s from %s\n", tool.Binary, tool.Module)
			if err := in.Run.Run(goBin, "install", tool.Module); err != nil {
				return fault.Execf("go install %s: %w", tool.Module, err)
			}
			in.State.GoTools[tool.Binary] = state.GoToolState{Module: tool.Module, Path: target}
		}
		if tool.Binary == "subfinder" {
			if err := in.ensureProviderConfig(); err != nil {
				return err
			}
		}
	}
	return nil
}

// removeGoTools deletes the binaries the run ledger shows armory built.
// Declared tools without a ledger record are somebody else's and stay.
func (in *Installer) removeGoTools() error {
	for _, tool := range in.Config.GoTools {
		rec, ok := in.State.GoTools[tool.Binary]
		if !ok {
			logger.Info("[INFO] Tool %s not installed by armory; skipping\n", tool.Binary)
			continue
		}
		path := rec.Path
		if path == "" {
			path = filepath.Join(in.Ctx.GoBin, tool.Binary)
		}
		if fileExists(path) {
			logger.Info("[INFO] Removing %s\n", path)
			if err := os.Remove(path); err != nil {
				return fault.Execf("remove %s: %w", path, err)
			}
		}
		delete(in.State.GoTools, tool.Binary)
	}
	return nil
}

// ensureProviderConfig writes the stock subfinder provider configuration if
// none exists yet. An existing file, whoever wrote it, is left untouched;
// only a file armory created is recorded for removal at uninstall.
func (in *Installer) ensureProviderConfig() error {
	path := filepath.Join(in.Ctx.Home, ".config", "subfinder", "provider-config.yaml")
	if fileExists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Execf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(defaultProviderConfig), 0644); err != nil {
		return fault.Execf("write %s: %w", path, err)
	}
	logger.Info("[INFO] Wrote default provider config %s\n", path)
	in.State.AddFile(path)
	return nil
}

// goBinary resolves the go command, preferring the managed install over PATH.
func (in *Installer) goBinary() (string, error) {
	managed := filepath.Join(goInstallDir, "bin", "go")
	if fileExists(managed) {
		return managed, nil
	}
	if p, err := in.Run.LookPath("go"); err == nil {
		return p, nil
	}
	return "", fault.Envf("no go toolchain available to build tools")
}

// onPath reports whether a command resolves on PATH.
func (in *Installer) onPath(name string) bool {
	_, err := in.Run.LookPath(name)
	return err == nil
}

// fileExists is a plain stat probe.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
