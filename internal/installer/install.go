package installer

import (
	"armory/internal/config"
	"armory/internal/platform"
	"armory/internal/profile"
	"armory/internal/run"
	"armory/internal/state"
)

// Installer drives one provisioning run. Every phase shares the detected
// platform context, a single command runner, the parsed shell profile, and
// the ledger recording what armory itself changed on this machine.
type Installer struct {
	Ctx       *platform.Context
	Run       run.Runner
	Config    *config.Config
	State     *state.State
	Profile   *profile.Ledger
	StatePath string

	// refreshed tracks whether the package index was updated this run,
	// so it happens at most once.
	refreshed bool
}

// New assembles an Installer for the detected platform: a command runner
// carrying the context's elevation prefix, the ledger loaded from the
// user's home, and the shell profile parsed into editable form.
func New(ctx *platform.Context, cfg *config.Config) (*Installer, error) {
	prof, err := profile.Open(ctx.ProfilePath)
	if err != nil {
		return nil, err
	}
	statePath := state.DefaultPath(ctx.Home)
	return &Installer{
		Ctx:       ctx,
		Run:       run.NewExec(ctx.Sudo),
		Config:    cfg,
		State:     state.Load(statePath),
		Profile:   prof,
		StatePath: statePath,
	}, nil
}

// Install converges the machine toward the manifests, in dependency order:
// system packages first (they provide git and the compilers everything else
// needs), then special installs, the Go toolchain, Go tools built with it,
// cloned tools, and wordlists. The ledger is saved after every phase so an
// aborted run still records everything it changed.
func (in *Installer) Install() error {
	phases := []func() error{
		in.installPackages,
		in.installSpecial,
		in.installToolchain,
		in.installGoTools,
		in.installTools,
		in.installWordlists,
	}
	for _, phase := range phases {
		err := phase()
		state.Save(in.StatePath, in.State)
		if err != nil {
			return err
		}
	}
	return nil
}
