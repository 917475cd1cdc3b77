package installer

import (
	"armory/internal/fault"
	"armory/internal/logger"
	"armory/internal/run"
	"armory/internal/state"
)

// installStrategy is the closed set of ways a declared package reaches the
// machine: through the platform package manager, or through the exact argv a
// special-package entry declares. Nothing else ever composes a command from
// manifest text.
type installStrategy interface {
	// Installed probes whether the target is already present, without side
	// effects.
	Installed(r run.Runner) bool
	// Install performs the mutation. Called at most once per run, and only
	// when Installed reported false.
	Install(r run.Runner) error
}

// packageManager describes one platform package manager as argv templates
// with the package name appended.
type packageManager struct {
	name    string
	probe   []string
	install []string
	remove  []string
	refresh []string // package index refresh, nil when the manager has none
	elevate bool     // mutations need privilege elevation
}

var aptManager = &packageManager{
	name:    "apt",
	probe:   []string{"dpkg", "-s"},
	install: []string{"apt-get", "install", "-y"},
	remove:  []string{"apt-get", "remove", "-y"},
	refresh: []string{"apt-get", "update"},
	elevate: true,
}

var brewManager = &packageManager{
	name:    "brew",
	probe:   []string{"brew", "list"},
	install: []string{"brew", "install"},
	remove:  []string{"brew", "uninstall"},
}

// managerFor picks the package manager for an OS family, nil when the family
// has none.
func managerFor(osFamily string) *packageManager {
	switch osFamily {
	case "Linux":
		return aptManager
	case "Darwin":
		return brewManager
	}
	return nil
}

// managerInstall installs one named package through the platform package
// manager.
type managerInstall struct {
	name string
	mgr  *packageManager
}

func (m managerInstall) Installed(r run.Runner) bool {
	argv := append(append([]string{}, m.mgr.probe...), m.name)
	_, err := r.Output(argv[0], argv[1:]...)
	return err == nil
}

func (m managerInstall) Install(r run.Runner) error {
	argv := append(append([]string{}, m.mgr.install...), m.name)
	if m.mgr.elevate {
		return r.Elevated(argv[0], argv[1:]...)
	}
	return r.Run(argv[0], argv[1:]...)
}

// remove is the inverse of Install, used by the uninstall engine.
func (m managerInstall) remove(r run.Runner) error {
	argv := append(append([]string{}, m.mgr.remove...), m.name)
	if m.mgr.elevate {
		return r.Elevated(argv[0], argv[1:]...)
	}
	return r.Run(argv[0], argv[1:]...)
}

// scriptedInstall installs a special package by running its declared argv
// directly.
type scriptedInstall struct {
	command string
	argv    []string
}

func (s scriptedInstall) Installed(r run.Runner) bool {
	_, err := r.LookPath(s.command)
	return err == nil
}

func (s scriptedInstall) Install(r run.Runner) error {
	return r.Run(s.argv[0], s.argv[1:]...)
}

// installPackages converges every matching system-packages entry: probe the
// package database, install what is missing, log and skip the rest. Installed
// packages are recorded in the run ledger.
func (in *Installer) installPackages() error {
	for _, spec := range in.Config.Packages {
		if !spec.Matches(in.Ctx.OS, in.Ctx.Arch) {
			continue
		}
		mgr := managerFor(in.Ctx.OS)
		if mgr == nil {
			return fault.Envf("no package manager known for OS family %s", in.Ctx.OS)
		}
		for _, name := range spec.Names {
			strat := managerInstall{name: name, mgr: mgr}
			if strat.Installed(in.Run) {
				logger.Info("[INFO] Package %s already installed\n", name)
				continue
			}
			if err := in.refreshIndex(mgr); err != nil {
				return err
			}
			logger.Info("[INFO] Installing package %s via %s\n", name, mgr.name)
			if err := strat.Install(in.Run); err != nil {
				return fault.Execf("install package %s: %w", name, err)
			}
			in.State.Packages[name] = state.PackageState{Manager: mgr.name}
		}
	}
	return nil
}

// installSpecial converges every matching special-packages entry: if the
// command resolves on PATH it is left alone, otherwise the declared argv runs
// exactly once.
func (in *Installer) installSpecial() error {
	for _, spec := range in.Config.Special {
		if !spec.Matches(in.Ctx.OS, in.Ctx.Arch) {
			continue
		}
		strat := scriptedInstall{command: spec.Command, argv: spec.Argv}
		if strat.Installed(in.Run) {
			logger.Info("[INFO] Command %s already on PATH\n", spec.Command)
			continue
		}
		logger.Info("[INFO] Installing %s\n", spec.Command)
		if err := strat.Install(in.Run); err != nil {
			return fault.Execf("install special package %s: %w", spec.Command, err)
		}
		in.State.Special[spec.Command] = state.SpecialState{Argv: spec.Argv}
	}
	return nil
}

// refreshIndex refreshes the package index at most once per run, right before
// the first actual install. Runs with nothing to install never touch it.
func (in *Installer) refreshIndex(mgr *packageManager) error {
	if in.refreshed || mgr.refresh == nil {
		return nil
	}
	in.refreshed = true
	logger.Info("[INFO] Refreshing %s package index\n", mgr.name)
	var err error
	if mgr.elevate {
		err = in.Run.Elevated(mgr.refresh[0], mgr.refresh[1:]...)
	} else {
		err = in.Run.Run(mgr.refresh[0], mgr.refresh[1:]...)
	}
	if err != nil {
		return fault.Execf("refresh %s package index: %w", mgr.name, err)
	}
	return nil
}
