// Package fakerun provides a scripted run.Runner for tests. It records every
// command a phase issues and answers probes from fixed tables instead of
// touching the host.
package fakerun

import (
	"os/exec"
	"strings"
)

// Call is one recorded command invocation.
type Call struct {
	Name     string
	Args     []string
	Elevated bool
}

// Line renders the call the way a shell user would type it.
func (c Call) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner records calls and serves scripted results. The zero value succeeds
// every command, captures empty output, and resolves no names on PATH.
type Runner struct {
	Calls []Call

	// Fail maps a command-line prefix to the error Run/Elevated/Output
	// return for matching invocations.
	Fail map[string]error
	// Outputs maps a command-line prefix to the combined output served by
	// Output.
	Outputs map[string]string
	// Paths lists the command names LookPath resolves; everything else gets
	// exec.ErrNotFound.
	Paths map[string]string
}

func (r *Runner) Run(name string, args ...string) error {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	return r.errorFor(name, args)
}

func (r *Runner) Elevated(name string, args ...string) error {
	r.Calls = append(r.Calls, Call{Name: name, Args: args, Elevated: true})
	return r.errorFor(name, args)
}

func (r *Runner) Output(name string, args ...string) (string, error) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	line := Call{Name: name, Args: args}.Line()
	var out string
	for prefix, o := range r.Outputs {
		if strings.HasPrefix(line, prefix) {
			out = o
			break
		}
	}
	return out, r.errorFor(name, args)
}

func (r *Runner) LookPath(file string) (string, error) {
	if p, ok := r.Paths[file]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// Lines returns every recorded invocation as a rendered command line, in
// order.
func (r *Runner) Lines() []string {
	lines := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		lines = append(lines, c.Line())
	}
	return lines
}

// CountPrefix reports how many recorded invocations start with the given
// command-line prefix.
func (r *Runner) CountPrefix(prefix string) int {
	n := 0
	for _, l := range r.Lines() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func (r *Runner) errorFor(name string, args []string) error {
	line := Call{Name: name, Args: args}.Line()
	for prefix, err := range r.Fail {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}
