package config

import (
	"os"
	"strings"

	"armory/internal/fault"
)

// archLiterals is the closed set of tokens the line scanner recognizes as
// architecture filters. It covers both uname spellings of the 64-bit
// architectures plus the common 32-bit values.
var archLiterals = map[string]bool{
	"x86_64":  true,
	"amd64":   true,
	"i386":    true,
	"i686":    true,
	"arm64":   true,
	"aarch64": true,
	"armv6l":  true,
	"armv7l":  true,
}

// manifestLines reads a manifest and returns its content lines. Blank lines
// and lines whose first non-space character is `#` are dropped; everything
// else is returned trimmed, in file order. A missing or unreadable file is a
// configuration fault.
func manifestLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Configf("read manifest %s: %w", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// scanArchTokens splits the tokens after the OS family into the architecture
// filter and the payload. The scan is positional and greedy: tokens are
// consumed as architecture literals until the first token outside the closed
// set, which starts the payload. A package genuinely named like an
// architecture literal is therefore read as a filter, not a package; a
// known limitation of the manifest format.
func scanArchTokens(tokens []string) (archs, payload []string) {
	i := 0
	for ; i < len(tokens); i++ {
		if !archLiterals[tokens[i]] {
			break
		}
		archs = append(archs, tokens[i])
	}
	return archs, tokens[i:]
}

// LoadPackages parses the system-packages manifest. Line shape:
//
//	<osFamily> [<architecture>...] <packageName>...
//
// A line with no architecture tokens yields a spec with an empty filter,
// which matches nowhere.
func LoadPackages(path string) ([]PackageSpec, error) {
	lines, err := manifestLines(path)
	if err != nil {
		return nil, err
	}
	var specs []PackageSpec
	for _, line := range lines {
		tokens := strings.Fields(line)
		archs, payload := scanArchTokens(tokens[1:])
		specs = append(specs, PackageSpec{
			OS:    tokens[0],
			Archs: archs,
			Names: payload,
		})
	}
	return specs, nil
}

// LoadSpecial parses the special-packages manifest. Line shape:
//
//	<osFamily> [<architecture>...] <commandName> <installCommand...>
//
// The install command is kept as an argv list; a line that declares a command
// name without any install text is a configuration fault.
func LoadSpecial(path string) ([]SpecialSpec, error) {
	lines, err := manifestLines(path)
	if err != nil {
		return nil, err
	}
	var specs []SpecialSpec
	for _, line := range lines {
		tokens := strings.Fields(line)
		archs, payload := scanArchTokens(tokens[1:])
		if len(payload) < 2 {
			return nil, fault.Configf("special manifest %s: line %q needs a command name and an install command", path, line)
		}
		specs = append(specs, SpecialSpec{
			OS:      tokens[0],
			Archs:   archs,
			Command: payload[0],
			Argv:    payload[1:],
		})
	}
	return specs, nil
}

// LoadGoTools parses the toolchain-tools manifest. Line shape:
//
//	<binaryName> <moduleURL>
func LoadGoTools(path string) ([]GoToolSpec, error) {
	lines, err := manifestLines(path)
	if err != nil {
		return nil, err
	}
	var specs []GoToolSpec
	for _, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			return nil, fault.Configf("toolchain-tools manifest %s: line %q needs exactly a binary name and a module URL", path, line)
		}
		specs = append(specs, GoToolSpec{Binary: tokens[0], Module: tokens[1]})
	}
	return specs, nil
}

// LoadRepos parses a tools or wordlists manifest. Line shape:
//
//	<directoryName>|<gitURL>
func LoadRepos(path string) ([]RepoSpec, error) {
	lines, err := manifestLines(path)
	if err != nil {
		return nil, err
	}
	var specs []RepoSpec
	for _, line := range lines {
		name, url, ok := strings.Cut(line, "|")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fault.Configf("repository manifest %s: line %q is not of the form name|url", path, line)
		}
		specs = append(specs, RepoSpec{Name: name, URL: url})
	}
	return specs, nil
}
