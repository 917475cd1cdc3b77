// Package profile owns every mutation of the shell profile. Directives are
// typed (PATH export, alias, completion source), compared on their parsed
// fields rather than raw text, and written inside one clearly delimited
// managed block. Content outside the block is preserved byte for byte, and a
// .bak copy of the prior profile is kept before any save that drops lines.
package profile

import (
	"os"
	"path/filepath"
	"strings"

	"armory/internal/fault"
)

// Markers delimiting the managed block inside the profile.
const (
	blockStart = "# >>> armory managed block >>>"
	blockEnd   = "# <<< armory managed block <<<"
)

// Directive is one managed profile line.
type Directive interface {
	// Render returns the exact line written to the profile.
	Render() string
}

// PathEntry appends a directory to PATH.
type PathEntry struct {
	Dir string
}

func (p PathEntry) Render() string {
	return `export PATH="$PATH:` + p.Dir + `"`
}

// AliasEntry defines a shell alias.
type AliasEntry struct {
	Name    string
	Command string
}

func (a AliasEntry) Render() string {
	return "alias " + a.Name + "='" + a.Command + "'"
}

// SourceEntry sources a completion file.
type SourceEntry struct {
	Path string
}

func (s SourceEntry) Render() string {
	return `source "` + s.Path + `"`
}

// rawLine carries an unrecognized line found inside the managed block through
// rewrites unchanged.
type rawLine struct {
	text string
}

func (r rawLine) Render() string {
	return r.text
}

// Ledger is the in-memory profile with its managed block parsed out. Obtain
// one with Open, mutate through the Ensure/Remove methods, persist with Save.
type Ledger struct {
	path     string
	original string
	head     []string // lines before the block
	tail     []string // lines after the block
	entries  []Directive
	hadBlock bool
	removed  bool
	livePath string // $PATH at open time, for the live component probe
}

// Open reads and parses the profile. The file must exist; the environment
// detector creates it before any component mutates it. A start marker without
// its end swallows the rest of the file into the block; the next save rewrites
// it with both markers.
func Open(path string) (*Ledger, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Envf("read profile %s: %w", path, err)
	}
	l := &Ledger{
		path:     path,
		original: string(raw),
		livePath: os.Getenv("PATH"),
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = nil
	}
	section := &l.head
	for _, line := range lines {
		switch {
		case line == blockStart && !l.hadBlock:
			l.hadBlock = true
			section = nil
		case line == blockEnd && section == nil:
			section = &l.tail
		case section == nil:
			if d, ok := parseDirective(line); ok {
				l.entries = append(l.entries, d)
			} else {
				l.entries = append(l.entries, rawLine{text: line})
			}
		default:
			*section = append(*section, line)
		}
	}
	return l, nil
}

// EnsurePath appends a PATH export for dir unless the directory is already a
// component of the live PATH, an equal entry sits in the managed block, or an
// equivalent export line exists elsewhere in the profile. Returns whether a
// new entry was appended.
func (l *Ledger) EnsurePath(dir string) bool {
	dir = filepath.Clean(dir)
	for _, component := range strings.Split(l.livePath, ":") {
		if component != "" && filepath.Clean(component) == dir {
			return false
		}
	}
	if l.contains(PathEntry{Dir: dir}) {
		return false
	}
	l.entries = append(l.entries, PathEntry{Dir: dir})
	return true
}

// EnsureAlias appends an alias unless one with the same name and command
// already exists in the block or elsewhere in the profile.
func (l *Ledger) EnsureAlias(name, command string) bool {
	if l.contains(AliasEntry{Name: name, Command: command}) {
		return false
	}
	l.entries = append(l.entries, AliasEntry{Name: name, Command: command})
	return true
}

// EnsureSource appends a completion source line unless an equal one exists.
func (l *Ledger) EnsureSource(path string) bool {
	if l.contains(SourceEntry{Path: path}) {
		return false
	}
	l.entries = append(l.entries, SourceEntry{Path: path})
	return true
}

// RemovePath drops the managed PATH export for dir. Returns whether an entry
// was removed.
func (l *Ledger) RemovePath(dir string) bool {
	dir = filepath.Clean(dir)
	return l.remove(func(d Directive) bool {
		p, ok := d.(PathEntry)
		return ok && filepath.Clean(p.Dir) == dir
	})
}

// RemoveAlias drops every managed alias with the given name, whatever its
// command.
func (l *Ledger) RemoveAlias(name string) bool {
	return l.remove(func(d Directive) bool {
		a, ok := d.(AliasEntry)
		return ok && a.Name == name
	})
}

// RemoveSources drops every managed completion source line.
func (l *Ledger) RemoveSources() bool {
	return l.remove(func(d Directive) bool {
		_, ok := d.(SourceEntry)
		return ok
	})
}

// Entries returns the managed directives in block order.
func (l *Ledger) Entries() []Directive {
	return l.entries
}

// Save rewrites the profile: untouched content around a freshly rendered
// managed block. Nothing is written when the rendered content equals what was
// read, so repeated runs leave the file byte-identical. When entries were
// removed, the prior content is first copied to <profile>.bak; the backup is
// never cleaned up.
func (l *Ledger) Save() error {
	content := l.render()
	if content == l.original {
		return nil
	}
	if l.removed {
		if err := os.WriteFile(l.path+".bak", []byte(l.original), 0644); err != nil {
			return fault.Envf("write profile backup %s.bak: %w", l.path, err)
		}
	}
	if err := os.WriteFile(l.path, []byte(content), 0644); err != nil {
		return fault.Envf("write profile %s: %w", l.path, err)
	}
	l.original = content
	l.removed = false
	return nil
}

// render assembles the whole profile. An empty managed block is omitted
// entirely, so a full uninstall leaves no markers behind.
func (l *Ledger) render() string {
	var lines []string
	lines = append(lines, l.head...)
	if len(l.entries) > 0 {
		lines = append(lines, blockStart)
		for _, d := range l.entries {
			lines = append(lines, d.Render())
		}
		lines = append(lines, blockEnd)
	}
	lines = append(lines, l.tail...)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// contains reports whether an equal directive exists in the managed block or
// parses out of any line elsewhere in the profile.
func (l *Ledger) contains(want Directive) bool {
	for _, d := range l.entries {
		if equal(d, want) {
			return true
		}
	}
	for _, section := range [][]string{l.head, l.tail} {
		for _, line := range section {
			if d, ok := parseDirective(line); ok && equal(d, want) {
				return true
			}
		}
	}
	return false
}

func (l *Ledger) remove(match func(Directive) bool) bool {
	kept := l.entries[:0]
	dropped := false
	for _, d := range l.entries {
		if match(d) {
			dropped = true
			continue
		}
		kept = append(kept, d)
	}
	l.entries = kept
	if dropped {
		l.removed = true
	}
	return dropped
}

// equal compares two directives on their semantic fields. Raw lines never
// compare equal to anything.
func equal(a, b Directive) bool {
	switch x := a.(type) {
	case PathEntry:
		y, ok := b.(PathEntry)
		return ok && filepath.Clean(x.Dir) == filepath.Clean(y.Dir)
	case AliasEntry:
		y, ok := b.(AliasEntry)
		return ok && x.Name == y.Name && x.Command == y.Command
	case SourceEntry:
		y, ok := b.(SourceEntry)
		return ok && filepath.Clean(x.Path) == filepath.Clean(y.Path)
	}
	return false
}

// parseDirective recognizes the three directive forms in a profile line,
// tolerating the common quoting variants so lines a user added by hand still
// count for the append-or-skip decision.
func parseDirective(line string) (Directive, bool) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "export PATH="):
		value := unquote(strings.TrimPrefix(line, "export PATH="))
		if rest, ok := strings.CutPrefix(value, "$PATH:"); ok && rest != "" {
			return PathEntry{Dir: rest}, true
		}
	case strings.HasPrefix(line, "alias "):
		name, value, ok := strings.Cut(strings.TrimPrefix(line, "alias "), "=")
		if ok && name != "" && !strings.ContainsAny(name, " \t") {
			return AliasEntry{Name: name, Command: unquote(value)}, true
		}
	case strings.HasPrefix(line, "source "):
		if path := unquote(strings.TrimSpace(strings.TrimPrefix(line, "source "))); path != "" {
			return SourceEntry{Path: path}, true
		}
	}
	return nil, false
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
