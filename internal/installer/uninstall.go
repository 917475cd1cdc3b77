package installer

import (
	"os"

	"armory/internal/fault"
	"armory/internal/logger"
	"armory/internal/state"
)

// uninstallRecipes maps special install commands to the argv that reverses
// them. Removal is deliberately not generic: a special install is an
// arbitrary command line, and guessing its inverse would be worse than
// leaving the tool in place.
var uninstallRecipes = map[string]struct {
	argv     []string
	elevated bool
}{
	"nxc":      {argv: []string{"pipx", "uninstall", "netexec"}},
	"rustscan": {argv: []string{"snap", "remove", "rustscan"}, elevated: true},
}

// Uninstall reverses a previous install run: packages, special installs, Go
// tools, the toolchain, cloned tools and wordlists, generated files, and the
// profile entries armory added. The ledger gates every removal, so state
// armory never recorded stays untouched. As with install, the ledger is
// saved after every phase.
func (in *Installer) Uninstall() error {
	phases := []func() error{
		in.removePackages,
		in.removeSpecial,
		in.removeGoTools,
		in.removeToolchain,
		in.removeTools,
		in.removeWordlists,
	}
	for _, phase := range phases {
		err := phase()
		state.Save(in.StatePath, in.State)
		if err != nil {
			return err
		}
	}
	in.removeGeneratedFiles()
	in.cleanProfile()
	if err := in.Profile.Save(); err != nil {
		return err
	}
	state.Save(in.StatePath, in.State)
	return nil
}

// removePackages removes manifest packages that a previous install run put
// on this machine. Packages present but never recorded belong to the user
// and stay.
func (in *Installer) removePackages() error {
	mgr := managerFor(in.Ctx.OS)
	for _, spec := range in.Config.Packages {
		if !spec.Matches(in.Ctx.OS, in.Ctx.Arch) {
			continue
		}
		for _, name := range spec.Names {
			if _, ok := in.State.Packages[name]; !ok {
				logger.Info("[INFO] Package %s not installed by armory; skipping\n", name)
				continue
			}
			if mgr == nil {
				return fault.Envf("no package manager known for %s", in.Ctx.OS)
			}
			strategy := managerInstall{name: name, mgr: mgr}
			if !strategy.Installed(in.Run) {
				logger.Info("[INFO] Package %s already absent\n", name)
				delete(in.State.Packages, name)
				continue
			}
			logger.Info("[INFO] Removing package %s\n", name)
			if err := strategy.remove(in.Run); err != nil {
				return fault.Execf("remove package %s: %w", name, err)
			}
			delete(in.State.Packages, name)
		}
	}
	return nil
}

// removeSpecial walks the recorded special installs and applies the matching
// uninstall recipe. Commands without a recipe are left installed with a
// warning.
func (in *Installer) removeSpecial() error {
	for _, spec := range in.Config.Special {
		if !spec.Matches(in.Ctx.OS, in.Ctx.Arch) {
			continue
		}
		if _, ok := in.State.Special[spec.Command]; !ok {
			logger.Info("[INFO] %s not installed by armory; skipping\n", spec.Command)
			continue
		}
		if _, err := in.Run.LookPath(spec.Command); err != nil {
			logger.Info("[INFO] %s already absent\n", spec.Command)
			delete(in.State.Special, spec.Command)
			continue
		}
		recipe, ok := uninstallRecipes[spec.Command]
		if !ok {
			logger.Warn("[WARN] No uninstall recipe for %s; leaving it installed\n", spec.Command)
			continue
		}
		logger.Info("[INFO] Removing %s\n", spec.Command)
		var err error
		if recipe.elevated {
			err = in.Run.Elevated(recipe.argv[0], recipe.argv[1:]...)
		} else {
			err = in.Run.Run(recipe.argv[0], recipe.argv[1:]...)
		}
		if err != nil {
			return fault.Execf("remove %s: %w", spec.Command, err)
		}
		delete(in.State.Special, spec.Command)
	}
	return nil
}

func (in *Installer) removeTools() error {
	return in.removeClones(in.Config.Tools, in.State.Tools, "Tool")
}

func (in *Installer) removeWordlists() error {
	return in.removeClones(in.Config.Wordlists, in.State.Wordlists, "Wordlist")
}

// removeGeneratedFiles deletes the configuration files install generated.
// A failed removal is cosmetic and only warns.
func (in *Installer) removeGeneratedFiles() {
	for _, path := range in.State.Files {
		err := os.Remove(path)
		switch {
		case err == nil:
			logger.Info("[INFO] Removed generated file %s\n", path)
		case !os.IsNotExist(err):
			logger.Warn("[WARN] Failed to remove %s: %v\n", path, err)
		}
	}
	in.State.Files = nil
}

// cleanProfile drops the alias of every declared tool and all completion
// sources from the managed block. Toolchain PATH entries are already gone
// by the time this runs.
func (in *Installer) cleanProfile() {
	for _, tool := range in.Config.Tools {
		if in.Profile.RemoveAlias(tool.Name) {
			logger.Info("[INFO] Removed alias %s\n", tool.Name)
		}
	}
	if in.Profile.RemoveSources() {
		logger.Info("[INFO] Removed completion source lines\n")
	}
}
