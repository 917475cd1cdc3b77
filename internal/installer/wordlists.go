package installer

import (
	"io/fs"
	"path/filepath"

	"armory/internal/fault"
	"armory/internal/logger"
)

// installWordlists clones each declared wordlist repository and expands any
// compressed payloads it ships. Wordlists get no setup, aliases, or
// completions; their value is the files themselves.
func (in *Installer) installWordlists() error {
	for _, list := range in.Config.Wordlists {
		dir := filepath.Join(in.Ctx.InstallHome, list.Name)
		if err := in.cloneRepo(list, dir, in.State.Wordlists); err != nil {
			return err
		}
		if err := expandWordlistDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// expandWordlistDir walks the clone recursively and expands every archive or
// compressed file in place, next to the original. A payload whose expansion
// target already exists is skipped, which keeps re-runs from re-extracting.
func expandWordlistDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fault.Execf("walk %s: %w", dir, err)
		}
		if d.IsDir() {
			return nil
		}
		target, ok := expansionTarget(path)
		if !ok {
			return nil
		}
		if fileExists(target) || dirExists(target) {
			logger.Debug("[DEBUG] %s already expanded, skipping\n", path)
			return nil
		}
		logger.Info("[INFO] Expanding %s\n", path)
		if err := expandArchive(path); err != nil {
			return fault.Execf("expand %s: %w", path, err)
		}
		return nil
	})
}
