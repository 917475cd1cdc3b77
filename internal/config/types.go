package config

// PackageSpec is one line of the system-packages manifest: an OS family, the
// architectures it applies to, and one or more package names for the platform
// package manager.
type PackageSpec struct {
	OS    string
	Archs []string
	Names []string
}

// SpecialSpec is one line of the special-packages manifest: a command name
// used as the idempotency probe plus the argv that installs it when the probe
// fails. The install text is tokenized at load time and executed argument by
// argument, never through a shell.
type SpecialSpec struct {
	OS      string
	Archs   []string
	Command string
	Argv    []string
}

// GoToolSpec is one line of the toolchain-tools manifest: the binary the tool
// provides and the module path `go install` builds it from.
type GoToolSpec struct {
	Binary string
	Module string
}

// RepoSpec is one line of the tools or wordlists manifest: the directory name
// under the install home and the git URL cloned into it.
type RepoSpec struct {
	Name string
	URL  string
}

// Config carries every parsed manifest for one run.
type Config struct {
	Packages  []PackageSpec
	Special   []SpecialSpec
	GoTools   []GoToolSpec
	Tools     []RepoSpec
	Wordlists []RepoSpec
}

// Matches reports whether the spec applies to the given OS family and
// architecture. A spec with an empty architecture set applies nowhere: a line
// such as `Linux nmap` declares no architectures and stays inert on every
// host.
func (s PackageSpec) Matches(osFamily, arch string) bool {
	return matches(s.OS, s.Archs, osFamily, arch)
}

// Matches applies the same rule for special-package specs.
func (s SpecialSpec) Matches(osFamily, arch string) bool {
	return matches(s.OS, s.Archs, osFamily, arch)
}

func matches(specOS string, archs []string, osFamily, arch string) bool {
	if specOS != osFamily {
		return false
	}
	for _, a := range archs {
		if a == arch {
			return true
		}
	}
	return false
}
