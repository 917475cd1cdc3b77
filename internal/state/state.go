// Package state persists the run ledger: a JSON record of exactly what
// install created on this machine. Uninstall consumes it and removes only
// recorded entries, leaving pre-existing packages, clones, and files alone.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"armory/internal/logger"
)

// PackageState records a system package this tool installed.
type PackageState struct {
	Manager string `json:"manager"` // package manager that installed it, "apt" or "brew"
}

// SpecialState records a special package installed by its declared command.
type SpecialState struct {
	Argv []string `json:"argv"` // the argv that performed the install
}

// ToolchainState records the managed toolchain install.
type ToolchainState struct {
	Version    string `json:"version"`     // dotted version, e.g. "1.24.5"
	InstallDir string `json:"install_dir"` // e.g. /usr/local/go
}

// GoToolState records a binary built with `go install`.
type GoToolState struct {
	Module string `json:"module"` // module URL from the manifest
	Path   string `json:"path"`   // absolute path of the installed binary
}

// CloneState records a cloned tool or wordlist repository.
type CloneState struct {
	Path string `json:"path"` // absolute clone directory
}

// State is the whole ledger for one machine.
type State struct {
	Packages  map[string]PackageState `json:"packages"`
	Special   map[string]SpecialState `json:"special"`
	Toolchain *ToolchainState         `json:"toolchain,omitempty"`
	GoTools   map[string]GoToolState  `json:"gotools"`
	Tools     map[string]CloneState   `json:"tools"`
	Wordlists map[string]CloneState   `json:"wordlists"`
	// Files lists generated configuration files, e.g. the subfinder provider
	// config, so uninstall knows they came from armory.
	Files []string `json:"files"`
}

// DefaultPath returns the ledger location for a home directory.
func DefaultPath(home string) string {
	return filepath.Join(home, ".armory-state.json")
}

// Load reads the ledger at path. A missing or unreadable file yields an empty
// ledger; losing the ledger only means uninstall will treat everything as
// pre-existing, so it is never fatal. All maps come back non-nil.
func Load(path string) *State {
	st := &State{}
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, st)
	}
	if st.Packages == nil {
		st.Packages = make(map[string]PackageState)
	}
	if st.Special == nil {
		st.Special = make(map[string]SpecialState)
	}
	if st.GoTools == nil {
		st.GoTools = make(map[string]GoToolState)
	}
	if st.Tools == nil {
		st.Tools = make(map[string]CloneState)
	}
	if st.Wordlists == nil {
		st.Wordlists = make(map[string]CloneState)
	}
	return st
}

// Save writes the ledger as indented JSON. Failures are logged as warnings
// and the run continues; the next successful save repairs the file.
func Save(path string, st *State) {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Warn("[WARN] Failed to marshal run ledger: %v\n", err)
		return
	}
	logger.Debug("[DEBUG] Writing run ledger to %s\n", path)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		logger.Warn("[WARN] Failed to write run ledger %s: %v\n", path, err)
	}
}

// AddFile records a generated file once.
func (s *State) AddFile(path string) {
	for _, f := range s.Files {
		if f == path {
			return
		}
	}
	s.Files = append(s.Files, path)
}

// RemoveFile drops a generated file from the ledger.
func (s *State) RemoveFile(path string) {
	files := s.Files[:0]
	for _, f := range s.Files {
		if f != path {
			files = append(files, f)
		}
	}
	s.Files = files
}
