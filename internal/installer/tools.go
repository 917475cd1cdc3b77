package installer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"armory/internal/config"
	"armory/internal/fault"
	"armory/internal/logger"
	"armory/internal/run"
	"armory/internal/state"
)

// setupMarker is the per-tool completion record: a JSON map from setup step
// to the SHA-256 fingerprint of the file that drove it. A step re-runs when
// its file changes; untouched steps are skipped forever.
const setupMarker = ".setup_done"

// interpreters maps entry-script extensions to the interpreter invoking them,
// in probe order.
var interpreters = []struct {
	ext     string
	command string
}{
	{".py", "python3"},
	{".sh", "bash"},
	{".rb", "ruby"},
	{".pl", "perl"},
}

// installTools walks the tools manifest through the full lifecycle:
// clone if absent, run outstanding setup steps, derive an alias and a
// completion source. The profile is saved once at the end of the phase.
func (in *Installer) installTools() error {
	for _, tool := range in.Config.Tools {
		dir := filepath.Join(in.Ctx.InstallHome, tool.Name)
		if err := in.cloneRepo(tool, dir, in.State.Tools); err != nil {
			return err
		}
		if err := in.setupTool(tool.Name, dir); err != nil {
			return err
		}
		in.aliasTool(tool.Name, dir)
		in.completionForTool(tool.Name, dir)
	}
	return in.Profile.Save()
}

// cloneRepo clones a declared repository unless its directory already exists.
// Fresh clones are recorded in the given ledger map.
func (in *Installer) cloneRepo(spec config.RepoSpec, dir string, ledger map[string]state.CloneState) error {
	if dirExists(dir) {
		logger.Info("[INFO] Repository %s already cloned\n", spec.Name)
		return nil
	}
	if err := os.MkdirAll(in.Ctx.InstallHome, 0755); err != nil {
		return fault.Execf("create install home %s: %w", in.Ctx.InstallHome, err)
	}
	logger.Info("[INFO] Cloning %s from %s\n", spec.Name, spec.URL)
	if err := in.Run.Run("git", "clone", spec.URL, dir); err != nil {
		return fault.Execf("clone %s: %w", spec.URL, err)
	}
	ledger[spec.Name] = state.CloneState{Path: dir}
	return nil
}

// setupRecord holds the fingerprints of completed setup steps for one tool.
type setupRecord map[string]string

func loadSetupRecord(dir string) setupRecord {
	rec := setupRecord{}
	if raw, err := os.ReadFile(filepath.Join(dir, setupMarker)); err == nil {
		_ = json.Unmarshal(raw, &rec)
	}
	return rec
}

// save writes the record. A failed write only costs a redundant re-run next
// time, so it warns instead of aborting.
func (r setupRecord) save(dir string) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		logger.Warn("[WARN] Failed to marshal setup record for %s: %v\n", dir, err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, setupMarker), raw, 0644); err != nil {
		logger.Warn("[WARN] Failed to write setup record in %s: %v\n", dir, err)
	}
}

// setupStep is one unit of a tool's dynamic setup, keyed by the file that
// defines it.
type setupStep struct {
	key         string
	fingerprint string
	exec        func(r run.Runner) error
}

// setupTool runs the setup steps whose source files are new or changed since
// the recorded fingerprints. Steps execute inside the tool directory; the
// working directory is restored on success and on abort. On a step failure
// the fingerprints of completed steps are kept, so the next run resumes at
// the failed step.
func (in *Installer) setupTool(name, dir string) error {
	steps, err := collectSetupSteps(dir)
	if err != nil {
		return err
	}
	rec := loadSetupRecord(dir)
	var pending []setupStep
	for _, step := range steps {
		if rec[step.key] == step.fingerprint {
			logger.Debug("[DEBUG] Setup step %s for %s unchanged, skipping\n", step.key, name)
			continue
		}
		pending = append(pending, step)
	}
	if len(pending) == 0 {
		if len(steps) > 0 {
			logger.Info("[INFO] Setup for %s already done\n", name)
		}
		if !fileExists(filepath.Join(dir, setupMarker)) {
			rec.save(dir)
		}
		return nil
	}

	prev, err := os.Getwd()
	if err != nil {
		return fault.Execf("resolve working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fault.Execf("enter %s: %w", dir, err)
	}
	defer func() {
		if err := os.Chdir(prev); err != nil {
			logger.Error("[ERROR] Failed to restore working directory %s: %v\n", prev, err)
		}
	}()

	for _, step := range pending {
		logger.Info("[INFO] Running setup step %s for %s\n", step.key, name)
		if err := step.exec(in.Run); err != nil {
			rec.save(dir)
			return fault.Execf("setup step %s for %s: %w", step.key, name, err)
		}
		rec[step.key] = step.fingerprint
	}
	rec.save(dir)
	return nil
}

// collectSetupSteps gathers the applicable steps for a tool directory in
// execution order: every requirements*.txt, then setup.sh, then setup.py.
func collectSetupSteps(dir string) ([]setupStep, error) {
	var steps []setupStep
	reqs, err := filepath.Glob(filepath.Join(dir, "requirements*.txt"))
	if err != nil {
		return nil, fault.Execf("scan %s for requirements files: %w", dir, err)
	}
	for _, req := range reqs {
		fp, err := fileFingerprint(req)
		if err != nil {
			return nil, err
		}
		name := filepath.Base(req)
		steps = append(steps, setupStep{
			key:         name,
			fingerprint: fp,
			exec: func(r run.Runner) error {
				return r.Run("pip3", "install", "-r", name)
			},
		})
	}

	if script := filepath.Join(dir, "setup.sh"); fileExists(script) {
		fp, err := fileFingerprint(script)
		if err != nil {
			return nil, err
		}
		steps = append(steps, setupStep{
			key:         "setup.sh",
			fingerprint: fp,
			exec: func(r run.Runner) error {
				if err := os.Chmod(script, 0755); err != nil {
					return err
				}
				return r.Run("./setup.sh")
			},
		})
	}

	if fileExists(filepath.Join(dir, "setup.py")) {
		fp, err := fileFingerprint(filepath.Join(dir, "setup.py"))
		if err != nil {
			return nil, err
		}
		steps = append(steps, setupStep{
			key:         "setup.py",
			fingerprint: fp,
			exec: func(r run.Runner) error {
				return r.Run("pip3", "install", ".")
			},
		})
	}
	return steps, nil
}

// fileFingerprint returns the hex SHA-256 of a file's content.
func fileFingerprint(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fault.Execf("fingerprint %s: %w", path, err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// aliasTool searches the tool directory, non-recursively, for an entry script
// named after the tool in lowercase or capitalized form with a recognized
// interpreter extension, and appends the matching alias. Tools without one
// are noted and skipped.
func (in *Installer) aliasTool(name, dir string) {
	script, interpreter := findEntryScript(name, dir)
	if script == "" {
		logger.Info("[INFO] No entry script found for %s; no alias added\n", name)
		return
	}
	command := interpreter + ` "` + script + `"`
	if in.Profile.EnsureAlias(name, command) {
		logger.Info("[INFO] Added alias %s\n", name)
	} else {
		logger.Info("[INFO] Alias %s already present\n", name)
	}
}

// findEntryScript probes the candidate script names in order and returns the
// first hit with its interpreter.
func findEntryScript(name, dir string) (script, interpreter string) {
	stems := []string{strings.ToLower(name)}
	if c := capitalized(name); c != stems[0] {
		stems = append(stems, c)
	}
	for _, stem := range stems {
		for _, entry := range interpreters {
			candidate := filepath.Join(dir, stem+entry.ext)
			if fileExists(candidate) {
				return candidate, entry.command
			}
		}
	}
	return "", ""
}

// capitalized lowercases the name and uppercases its first letter, matching
// the naming convention entry scripts follow.
func capitalized(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// completionForTool sources a completion file the tool ships for the active
// shell, completions/<lowername>.<shell>.
func (in *Installer) completionForTool(name, dir string) {
	path := filepath.Join(dir, "completions", strings.ToLower(name)+"."+in.Ctx.Shell)
	if !fileExists(path) {
		return
	}
	if in.Profile.EnsureSource(path) {
		logger.Info("[INFO] Sourcing %s completions for %s\n", in.Ctx.Shell, name)
	}
}

// removeClones deletes the recorded clone directories for the given manifest
// entries. Directories never recorded by an install run are left alone.
func (in *Installer) removeClones(specs []config.RepoSpec, ledger map[string]state.CloneState, kind string) error {
	for _, spec := range specs {
		rec, ok := ledger[spec.Name]
		if !ok {
			logger.Info("[INFO] %s %s not installed by armory; skipping\n", kind, spec.Name)
			continue
		}
		path := rec.Path
		if path == "" {
			path = filepath.Join(in.Ctx.InstallHome, spec.Name)
		}
		if dirExists(path) {
			logger.Info("[INFO] Removing %s\n", path)
			if err := os.RemoveAll(path); err != nil {
				return fault.Execf("remove %s: %w", path, err)
			}
		}
		delete(ledger, spec.Name)
	}
	return nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
